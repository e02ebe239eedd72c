package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel       string   `yaml:"log-level" env-default:"info"`
	HTTPPort       string   `yaml:"http-port" env-default:"9090"`
	SocketPort     string   `yaml:"socket-port" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed-origins" env-default:""`
	Game           Game     `yaml:"game"`
}

type Game struct {
	TurnSeconds            int `yaml:"turn-seconds" env-default:"30"`
	TimerAnnounceSeconds   int `yaml:"timer-announce-seconds" env-default:"5"`
	DisconnectGraceSeconds int `yaml:"disconnect-grace-seconds" env-default:"60"`
	RoomIdleMinutes        int `yaml:"room-idle-minutes" env-default:"10"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Game) TurnBudget() time.Duration {
	return time.Duration(that.TurnSeconds) * time.Second
}

func (that *Game) TimerAnnounceEvery() time.Duration {
	return time.Duration(that.TimerAnnounceSeconds) * time.Second
}

func (that *Game) DisconnectGrace() time.Duration {
	return time.Duration(that.DisconnectGraceSeconds) * time.Second
}

func (that *Game) RoomIdleTTL() time.Duration {
	return time.Duration(that.RoomIdleMinutes) * time.Minute
}
