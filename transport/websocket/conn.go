package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single write may block on a slow peer.
const writeWait = 10 * time.Second

// Conn wraps one websocket connection with a write lock, so the read loop
// and the room layer's timer goroutines can all send to the same peer.
// It is the connection handle the room directory keys its registries by.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (that *Conn) Send(message any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.ws.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Conn) close() error {
	if err := that.ws.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
