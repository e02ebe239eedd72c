package room

import (
	"context"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/protocol"
)

// RunJanitor - periodically sweeps rooms that never started and have been
// idle past the configured TTL. Covers the case of a creator vanishing
// without a disconnect signal ever reaching the server. Started rooms are
// never swept; their lifecycle ends through game end and disconnects.
func (that *Directory) RunJanitor(ctx context.Context) {
	interval := that.conf.RoomIdleTTL / 4
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.sweepIdleRooms()
		}
	}
}

func (that *Directory) sweepIdleRooms() {
	log := that.logger.With("method", "sweepIdleRooms")

	that.mu.Lock()
	defer that.mu.Unlock()

	cutoff := time.Now().Add(-that.conf.RoomIdleTTL)

	for _, session := range that.rooms {
		if session.Started || session.lastActivity.After(cutoff) {
			continue
		}

		session.Broadcast(protocol.NewError("room expired due to inactivity"))
		that.removeRoomLocked(session)

		log.Info("idle room swept", "roomID", session.ID)
	}
}
