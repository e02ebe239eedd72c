package room

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/protocol"
)

const roomCapacity = 2

// Config holds the time parameters of a directory's scheduled tasks.
type Config struct {
	TurnBudget         time.Duration
	TimerAnnounceEvery time.Duration
	DisconnectGrace    time.Duration
	RoomIdleTTL        time.Duration
}

func DefaultConfig() Config {
	return Config{
		TurnBudget:         30 * time.Second,
		TimerAnnounceEvery: 5 * time.Second,
		DisconnectGrace:    60 * time.Second,
		RoomIdleTTL:        10 * time.Minute,
	}
}

// Directory is the process-wide room registry and the single entry point for
// everything that mutates a room: creation, joining, moves, reconnects and
// disconnects. One mutex serializes all of it, so each operation runs to
// completion before the next event. The turn timer and disconnect forfeit
// goroutines take the same lock and re-check their cancellation and the
// game's terminal flag after acquiring it, which keeps every terminal
// outcome at-most-once no matter which trigger fires first.
type Directory struct {
	logger *slog.Logger
	conf   Config

	mu       sync.Mutex
	rooms    map[string]*Session
	connRoom map[Conn]string
}

func NewDirectory(logger *slog.Logger, conf Config) *Directory {
	return &Directory{
		logger:   logger,
		conf:     conf,
		rooms:    make(map[string]*Session),
		connRoom: make(map[Conn]string),
	}
}

// CreateRoom - mints a room with the caller seated as black and tells the
// caller its room code, token and color.
func (that *Directory) CreateRoom(conn Conn) *Session {
	log := that.logger.With("method", "CreateRoom")

	that.mu.Lock()
	defer that.mu.Unlock()

	roomID := that.uniqueRoomIDLocked()

	session := newSession(roomID)
	creator := &Participant{
		Conn:      conn,
		Token:     pkg.GeneratePlayerToken(),
		Color:     entity.Black,
		Connected: true,
	}
	session.Participants = append(session.Participants, creator)

	that.rooms[roomID] = session
	that.connRoom[conn] = roomID

	session.SendTo(creator, protocol.NewRoomCreated(roomID, creator.Token, creator.Color))

	log.Info("room created", "roomID", roomID)

	return session
}

// JoinRoom - seats the caller as white, announces the start to both players
// and kicks off the turn timer for black's first move.
func (that *Directory) JoinRoom(conn Conn, roomID string) error {
	log := that.logger.With("method", "JoinRoom")

	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.rooms[normalizeRoomID(roomID)]
	if !ok {
		return apperror.ErrRoomNotFound
	}

	if len(session.Participants) >= roomCapacity {
		return apperror.ErrRoomFull
	}

	if session.Game.Over {
		return apperror.ErrGameEnded
	}

	joiner := &Participant{
		Conn:      conn,
		Token:     pkg.GeneratePlayerToken(),
		Color:     entity.White,
		Connected: true,
	}
	session.Participants = append(session.Participants, joiner)
	that.connRoom[conn] = session.ID
	session.touch()

	session.SendTo(joiner, protocol.NewRoomCreated(session.ID, joiner.Token, joiner.Color))
	session.SendTo(session.Participants[0], protocol.NewPlayerJoined(joiner.Color))

	session.Started = true
	for _, participant := range session.Participants {
		session.SendTo(participant, protocol.NewGameStarted(participant.Color))
	}

	that.startTurnTimerLocked(session)

	log.Info("player joined, game started", "roomID", session.ID)

	return nil
}

// SubmitMove - validates and applies a move for the participant behind the
// connection. Validation failures are returned to the caller and change
// nothing; accepted moves are broadcast, and either end the game or hand
// the turn (and a fresh timer) to the opponent.
func (that *Directory) SubmitMove(conn Conn, row, col int) error {
	log := that.logger.With("method", "SubmitMove")

	that.mu.Lock()
	defer that.mu.Unlock()

	session, participant := that.resolveConnLocked(conn)
	if participant == nil {
		return apperror.ErrNotInRoom
	}

	if !session.Started {
		return apperror.ErrGameNotStarted
	}

	if err := session.Game.ValidateMove(row, col, participant.Color); err != nil {
		return err
	}

	ended := session.Game.PlaceStone(row, col, participant.Color)
	session.touch()

	nextTurn := entity.EmptyCell
	if !ended {
		nextTurn = session.Game.Turn
	}

	session.Broadcast(protocol.NewStonePlaced(row, col, participant.Color, nextTurn))

	if !ended {
		that.startTurnTimerLocked(session)
		return nil
	}

	session.stopTurnTimer()

	reason := protocol.ReasonDraw
	if session.Game.Winner != entity.EmptyCell {
		reason = protocol.ReasonFiveInRow
	}

	session.Broadcast(protocol.NewGameOver(session.Game.Winner, reason))

	log.Info("game over", "roomID", session.ID, "winner", session.Game.Winner, "reason", reason)

	return nil
}

// Reconnect - re-binds a fresh connection to the seat behind the token,
// discarding any pending disconnect forfeit, and answers with a full state
// snapshot so the client can redraw the board.
func (that *Directory) Reconnect(conn Conn, roomID, token string) error {
	log := that.logger.With("method", "Reconnect")

	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.rooms[normalizeRoomID(roomID)]
	if !ok {
		return apperror.ErrRoomNotFound
	}

	participant := session.ParticipantByToken(token)
	if participant == nil {
		return apperror.ErrInvalidToken
	}

	session.cancelForfeit(token)

	if participant.Conn != nil {
		delete(that.connRoom, participant.Conn)
	}

	participant.Conn = conn
	participant.Connected = true
	that.connRoom[conn] = session.ID
	session.touch()

	snapshot := protocol.NewStateSync(
		session.Game.BoardRows(),
		session.Game.Turn,
		session.Game.MoveCount,
		participant.Color,
		session.RemainingTurnTime(that.conf.TurnBudget).Seconds(),
	)
	session.SendTo(participant, snapshot)

	if opponent := session.OpponentOf(participant); opponent != nil {
		session.SendTo(opponent, protocol.NewOpponentReconnected())
	}

	log.Info("player reconnected", "roomID", session.ID, "color", participant.Color)

	return nil
}

// HandleDisconnect - reacts to a transport-level connection loss. With a
// connected opponent left behind the seat gets a grace period to return;
// otherwise the room is torn down on the spot.
func (that *Directory) HandleDisconnect(conn Conn) {
	log := that.logger.With("method", "HandleDisconnect")

	that.mu.Lock()
	defer that.mu.Unlock()

	roomID, ok := that.connRoom[conn]
	if !ok {
		return
	}
	delete(that.connRoom, conn)

	session, ok := that.rooms[roomID]
	if !ok {
		return
	}

	participant := session.ParticipantByConn(conn)
	if participant == nil {
		return
	}

	participant.Connected = false
	participant.Conn = nil

	log.Info("player disconnected", "roomID", session.ID, "color", participant.Color)

	opponent := session.OpponentOf(participant)
	if opponent == nil || !opponent.Connected {
		that.removeRoomLocked(session)
		return
	}

	session.SendTo(opponent, protocol.NewOpponentDisconnected())
	that.startForfeitLocked(session, participant)
}

// SessionByID - read access for tests and diagnostics.
func (that *Directory) SessionByID(roomID string) (*Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.rooms[normalizeRoomID(roomID)]

	return session, ok
}

func (that *Directory) resolveConnLocked(conn Conn) (*Session, *Participant) {
	roomID, ok := that.connRoom[conn]
	if !ok {
		return nil, nil
	}

	session, ok := that.rooms[roomID]
	if !ok {
		return nil, nil
	}

	return session, session.ParticipantByConn(conn)
}

// removeRoomLocked - cancels every scheduled task and drops the room and
// its connection mappings from the registries.
func (that *Directory) removeRoomLocked(session *Session) {
	session.cancelAllTasks()
	delete(that.rooms, session.ID)

	for _, participant := range session.Participants {
		if participant.Conn != nil {
			delete(that.connRoom, participant.Conn)
		}
	}

	that.logger.Info("room removed", "roomID", session.ID)
}

func (that *Directory) uniqueRoomIDLocked() string {
	for {
		roomID := pkg.GenerateRoomID()
		if _, taken := that.rooms[roomID]; !taken {
			return roomID
		}
	}
}

// Room codes are matched case-insensitively; generated codes are lowercase.
func normalizeRoomID(roomID string) string {
	return strings.ToLower(roomID)
}
