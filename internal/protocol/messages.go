package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Client message types.
const (
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypePlaceStone = "place_stone"
	TypeLeaveRoom  = "leave_room"
	TypeReconnect  = "reconnect"
)

// Server message types.
const (
	TypeRoomCreated          = "room_created"
	TypePlayerJoined         = "player_joined"
	TypeGameStarted          = "game_started"
	TypeStonePlaced          = "stone_placed"
	TypeGameOver             = "game_over"
	TypeStateSync            = "state_sync"
	TypeTurnTimer            = "turn_timer"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeOpponentReconnected  = "opponent_reconnected"
	TypeError                = "error"
)

// Game over reasons.
const (
	ReasonFiveInRow  = "five_in_row"
	ReasonTimeout    = "timeout"
	ReasonDisconnect = "disconnect"
	ReasonDraw       = "draw"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidMessage     = errors.New("invalid message")
)

// CreateRoom - client request to open a new room.
type CreateRoom struct {
	Type string `json:"type"`
}

// JoinRoom - client request to join an existing room by its code.
type JoinRoom struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// PlaceStone - client move submission. Row and Col are pointers so a
// missing coordinate is distinguishable from zero and rejected.
type PlaceStone struct {
	Type string `json:"type"`
	Row  *int   `json:"row"`
	Col  *int   `json:"col"`
}

// LeaveRoom - client request to abandon its room.
type LeaveRoom struct {
	Type string `json:"type"`
}

// Reconnect - client request to re-bind a fresh connection to its seat.
type Reconnect struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	PlayerToken string `json:"player_token"`
}

type envelope struct {
	Type string `json:"type"`
}

// ParseClientMessage - decodes a raw frame into one of the typed client
// messages. Parsing fails closed: an unknown type, an unknown field or a
// missing required field is an error, never a guess.
func ParseClientMessage(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	switch env.Type {
	case TypeCreateRoom:
		return decodeStrict[CreateRoom](data)
	case TypeLeaveRoom:
		return decodeStrict[LeaveRoom](data)
	case TypeJoinRoom:
		msg, err := decodeStrict[JoinRoom](data)
		if err != nil {
			return nil, err
		}
		if msg.RoomID == "" {
			return nil, fmt.Errorf("%w: room_id is required", ErrInvalidMessage)
		}
		return msg, nil
	case TypePlaceStone:
		msg, err := decodeStrict[PlaceStone](data)
		if err != nil {
			return nil, err
		}
		if msg.Row == nil || msg.Col == nil {
			return nil, fmt.Errorf("%w: row and col are required", ErrInvalidMessage)
		}
		return msg, nil
	case TypeReconnect:
		msg, err := decodeStrict[Reconnect](data)
		if err != nil {
			return nil, err
		}
		if msg.RoomID == "" || msg.PlayerToken == "" {
			return nil, fmt.Errorf("%w: room_id and player_token are required", ErrInvalidMessage)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

func decodeStrict[T any](data []byte) (*T, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	msg := new(T)
	if err := decoder.Decode(msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return msg, nil
}

// RoomCreated - tells a player which room, seat and credential it was given.
type RoomCreated struct {
	Type        string       `json:"type"`
	RoomID      string       `json:"room_id"`
	PlayerToken string       `json:"player_token"`
	Color       entity.Color `json:"color"`
}

func NewRoomCreated(roomID, playerToken string, color entity.Color) *RoomCreated {
	return &RoomCreated{Type: TypeRoomCreated, RoomID: roomID, PlayerToken: playerToken, Color: color}
}

// PlayerJoined - tells the creator that an opponent arrived.
type PlayerJoined struct {
	Type  string       `json:"type"`
	Color entity.Color `json:"color"`
}

func NewPlayerJoined(color entity.Color) *PlayerJoined {
	return &PlayerJoined{Type: TypePlayerJoined, Color: color}
}

// GameStarted - announces the start of play to one player.
type GameStarted struct {
	Type      string       `json:"type"`
	YourColor entity.Color `json:"your_color"`
}

func NewGameStarted(yourColor entity.Color) *GameStarted {
	return &GameStarted{Type: TypeGameStarted, YourColor: yourColor}
}

// StonePlaced - broadcast of an accepted move. NextTurn is empty when
// the move ended the game.
type StonePlaced struct {
	Type     string       `json:"type"`
	Row      int          `json:"row"`
	Col      int          `json:"col"`
	Color    entity.Color `json:"color"`
	NextTurn entity.Color `json:"next_turn"`
}

func NewStonePlaced(row, col int, color, nextTurn entity.Color) *StonePlaced {
	return &StonePlaced{Type: TypeStonePlaced, Row: row, Col: col, Color: color, NextTurn: nextTurn}
}

// GameOver - terminal result. Winner is empty on a draw.
type GameOver struct {
	Type   string       `json:"type"`
	Winner entity.Color `json:"winner"`
	Reason string       `json:"reason"`
}

func NewGameOver(winner entity.Color, reason string) *GameOver {
	return &GameOver{Type: TypeGameOver, Winner: winner, Reason: reason}
}

// StateSync - full game snapshot delivered to a reconnecting player.
type StateSync struct {
	Type           string           `json:"type"`
	Board          [][]entity.Color `json:"board"`
	CurrentTurn    entity.Color     `json:"current_turn"`
	MoveCount      int              `json:"move_count"`
	YourColor      entity.Color     `json:"your_color"`
	TimerRemaining float64          `json:"timer_remaining"`
}

func NewStateSync(board [][]entity.Color, turn entity.Color, moveCount int, yourColor entity.Color, timerRemaining float64) *StateSync {
	return &StateSync{
		Type:           TypeStateSync,
		Board:          board,
		CurrentTurn:    turn,
		MoveCount:      moveCount,
		YourColor:      yourColor,
		TimerRemaining: timerRemaining,
	}
}

// TurnTimer - periodic countdown announcement, seconds left on the turn.
type TurnTimer struct {
	Type      string  `json:"type"`
	Remaining float64 `json:"remaining"`
}

func NewTurnTimer(remaining float64) *TurnTimer {
	return &TurnTimer{Type: TypeTurnTimer, Remaining: remaining}
}

type OpponentDisconnected struct {
	Type string `json:"type"`
}

func NewOpponentDisconnected() *OpponentDisconnected {
	return &OpponentDisconnected{Type: TypeOpponentDisconnected}
}

type OpponentReconnected struct {
	Type string `json:"type"`
}

func NewOpponentReconnected() *OpponentReconnected {
	return &OpponentReconnected{Type: TypeOpponentReconnected}
}

// Error - human-readable failure reply to the requester only.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) *Error {
	return &Error{Type: TypeError, Message: message}
}
