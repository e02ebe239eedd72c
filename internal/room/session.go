package room

import (
	"context"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Conn is the transport-level handle the room layer writes to. Send must be
// safe for concurrent use. A broken peer surfaces through the transport's
// disconnect signal, never through a Send error, so callers ignore failures.
type Conn interface {
	Send(message any) error
}

// Participant is one seat in a room. The connection handle is replaced on
// reconnect; the token and color stay with the seat for the room's lifetime.
type Participant struct {
	Conn      Conn
	Token     string
	Color     entity.Color
	Connected bool
}

// Session is one room: a game plus up to two participants. Index 0 of
// Participants is always the creator, playing black.
type Session struct {
	ID           string
	Participants []*Participant
	Game         *entity.Game
	Started      bool

	turnCancel    context.CancelFunc
	turnStartedAt time.Time

	forfeits map[string]context.CancelFunc

	lastActivity time.Time
}

func newSession(id string) *Session {
	return &Session{
		ID:           id,
		Game:         entity.NewGame(),
		forfeits:     make(map[string]context.CancelFunc),
		lastActivity: time.Now(),
	}
}

func (that *Session) ParticipantByToken(token string) *Participant {
	for _, participant := range that.Participants {
		if participant.Token == token {
			return participant
		}
	}

	return nil
}

func (that *Session) ParticipantByConn(conn Conn) *Participant {
	for _, participant := range that.Participants {
		if participant.Conn == conn {
			return participant
		}
	}

	return nil
}

func (that *Session) OpponentOf(participant *Participant) *Participant {
	for _, other := range that.Participants {
		if other != participant {
			return other
		}
	}

	return nil
}

// Broadcast - best-effort delivery to every connected participant. A failed
// send to one participant never blocks delivery to the other.
func (that *Session) Broadcast(message any) {
	for _, participant := range that.Participants {
		that.SendTo(participant, message)
	}
}

// SendTo - best-effort delivery to one participant; no-op when disconnected.
func (that *Session) SendTo(participant *Participant, message any) {
	if !participant.Connected || participant.Conn == nil {
		return
	}

	_ = participant.Conn.Send(message)
}

// RemainingTurnTime - time left on the running turn, or the full budget if
// no turn timer has ever started.
func (that *Session) RemainingTurnTime(budget time.Duration) time.Duration {
	if that.turnStartedAt.IsZero() {
		return budget
	}

	remaining := budget - time.Since(that.turnStartedAt)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (that *Session) touch() {
	that.lastActivity = time.Now()
}

// stopTurnTimer - cancels the running turn timer, if any. Must be called
// with the directory lock held.
func (that *Session) stopTurnTimer() {
	if that.turnCancel == nil {
		return
	}

	that.turnCancel()
	that.turnCancel = nil
}

// cancelForfeit - discards the pending disconnect forfeit for a token.
func (that *Session) cancelForfeit(token string) {
	cancel, ok := that.forfeits[token]
	if !ok {
		return
	}

	cancel()
	delete(that.forfeits, token)
}

// cancelAllTasks - stops every scheduled task owned by the session.
func (that *Session) cancelAllTasks() {
	that.stopTurnTimer()

	for token, cancel := range that.forfeits {
		cancel()
		delete(that.forfeits, token)
	}
}
