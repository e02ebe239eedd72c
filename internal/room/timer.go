package room

import (
	"context"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/protocol"
)

// startTurnTimerLocked - replaces any running turn timer with a fresh one.
// There is at most one live timer per room; the previous one is cancelled
// before the new one starts. Must be called with the directory lock held.
func (that *Directory) startTurnTimerLocked(session *Session) {
	session.stopTurnTimer()

	ctx, cancel := context.WithCancel(context.Background())
	session.turnCancel = cancel
	session.turnStartedAt = time.Now()

	go that.runTurnTimer(ctx, session)
}

// runTurnTimer - counts down the turn budget, announcing the remaining time
// at every interval. When the budget runs out with the game still live, the
// player on turn loses. Cancellation and the game's terminal flag are both
// re-checked under the directory lock before any announcement or terminal
// write, so a timer that lost the race to a winning move does nothing.
func (that *Directory) runTurnTimer(ctx context.Context, session *Session) {
	log := that.logger.With("method", "runTurnTimer")

	remaining := that.conf.TurnBudget

	for remaining > 0 {
		step := that.conf.TimerAnnounceEvery
		if remaining < step {
			step = remaining
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(step):
		}

		remaining -= step

		that.mu.Lock()

		if ctx.Err() != nil || session.Game.Over {
			that.mu.Unlock()
			return
		}

		if remaining > 0 {
			session.Broadcast(protocol.NewTurnTimer(remaining.Seconds()))
			that.mu.Unlock()
			continue
		}

		loser := session.Game.Turn
		session.Game.Finish(loser.Opponent())
		session.stopTurnTimer()
		session.Broadcast(protocol.NewGameOver(session.Game.Winner, protocol.ReasonTimeout))

		log.Info("turn budget exhausted", "roomID", session.ID, "loser", loser)

		that.mu.Unlock()

		return
	}
}

// startForfeitLocked - schedules the disconnect forfeit for a participant
// that just dropped. A reconnect with the same token cancels it.
func (that *Directory) startForfeitLocked(session *Session, participant *Participant) {
	ctx, cancel := context.WithCancel(context.Background())
	session.forfeits[participant.Token] = cancel

	go that.runDisconnectForfeit(ctx, session, participant)
}

// runDisconnectForfeit - waits out the grace period. If the participant is
// still gone at expiry the opponent wins (when the game is live) and the
// room is torn down either way.
func (that *Directory) runDisconnectForfeit(ctx context.Context, session *Session, participant *Participant) {
	log := that.logger.With("method", "runDisconnectForfeit")

	select {
	case <-ctx.Done():
		return
	case <-time.After(that.conf.DisconnectGrace):
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	delete(session.forfeits, participant.Token)

	if participant.Connected {
		return
	}

	if session.Started && !session.Game.Over {
		if opponent := session.OpponentOf(participant); opponent != nil {
			session.Game.Finish(opponent.Color)
			session.Broadcast(protocol.NewGameOver(opponent.Color, protocol.ReasonDisconnect))

			log.Info("disconnect grace expired, game forfeited", "roomID", session.ID, "winner", opponent.Color)
		}
	}

	that.removeRoomLocked(session)
}
