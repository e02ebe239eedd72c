package websocket

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

func TestOriginChecker(t *testing.T) {
	newRequest := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}

	t.Run("Allows a listed origin", func(t *testing.T) {
		check := originChecker([]string{"http://localhost:5173"})

		assert.True(t, check(newRequest("http://localhost:5173")))
	})

	t.Run("Matches origins case-insensitively", func(t *testing.T) {
		check := originChecker([]string{"http://Localhost:5173"})

		assert.True(t, check(newRequest("http://localhost:5173")))
	})

	t.Run("Rejects an origin not on the list", func(t *testing.T) {
		check := originChecker([]string{"http://localhost:5173"})

		assert.False(t, check(newRequest("http://evil.example")))
	})

	t.Run("Allows non-browser clients without an Origin header", func(t *testing.T) {
		check := originChecker([]string{"http://localhost:5173"})

		assert.True(t, check(newRequest("")))
	})

	t.Run("An empty allow-list lets everything through", func(t *testing.T) {
		check := originChecker(nil)

		assert.True(t, check(newRequest("http://anywhere.example")))
	})
}

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conf := room.Config{
		TurnBudget:         time.Minute,
		TimerAnnounceEvery: 10 * time.Second,
		DisconnectGrace:    time.Minute,
		RoomIdleTTL:        time.Hour,
	}
	directory := room.NewDirectory(logger, conf)

	server := New(logger, directory, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.handleUpgrade)

	testServer := httptest.NewServer(mux)
	t.Cleanup(testServer.Close)

	return testServer
}

func dial(t *testing.T, testServer *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))

	var message map[string]any
	require.NoError(t, ws.ReadJSON(&message))

	return message
}

func writeMessage(t *testing.T, ws *websocket.Conn, message any) {
	t.Helper()

	require.NoError(t, ws.WriteJSON(message))
}

func TestServer_RoundTrip(t *testing.T) {
	testServer := startTestServer(t)

	creator := dial(t, testServer)
	joiner := dial(t, testServer)

	// Given: the creator opens a room
	writeMessage(t, creator, map[string]any{"type": "create_room"})

	created := readMessage(t, creator)
	require.Equal(t, "room_created", created["type"])
	assert.Equal(t, "black", created["color"])
	assert.NotEmpty(t, created["player_token"])

	roomID, ok := created["room_id"].(string)
	require.True(t, ok)
	require.Len(t, roomID, 6)

	// When: a second player joins with the room code
	writeMessage(t, joiner, map[string]any{"type": "join_room", "room_id": roomID})

	// Then: the joiner gets its white seat and the game start
	joinerCreated := readMessage(t, joiner)
	assert.Equal(t, "room_created", joinerCreated["type"])
	assert.Equal(t, "white", joinerCreated["color"])

	joinerStarted := readMessage(t, joiner)
	assert.Equal(t, "game_started", joinerStarted["type"])
	assert.Equal(t, "white", joinerStarted["your_color"])

	// And: the creator hears about the joiner and the start
	joined := readMessage(t, creator)
	assert.Equal(t, "player_joined", joined["type"])

	creatorStarted := readMessage(t, creator)
	assert.Equal(t, "game_started", creatorStarted["type"])
	assert.Equal(t, "black", creatorStarted["your_color"])

	// When: black places the first stone
	writeMessage(t, creator, map[string]any{"type": "place_stone", "row": 7, "col": 7})

	// Then: both peers see the placement with white to move
	for _, ws := range []*websocket.Conn{creator, joiner} {
		placed := readMessage(t, ws)
		assert.Equal(t, "stone_placed", placed["type"])
		assert.Equal(t, float64(7), placed["row"])
		assert.Equal(t, "black", placed["color"])
		assert.Equal(t, "white", placed["next_turn"])
	}

	// When: white tries to move out of turn
	writeMessage(t, joiner, map[string]any{"type": "place_stone", "row": 7, "col": 7})

	// Then: only white gets an error reply
	errReply := readMessage(t, joiner)
	assert.Equal(t, "error", errReply["type"])
	assert.Contains(t, errReply["message"], "occupied")

	// When: the creator's connection drops
	require.NoError(t, creator.Close())

	// Then: the joiner is told the opponent disconnected
	notice := readMessage(t, joiner)
	assert.Equal(t, "opponent_disconnected", notice["type"])
}

func TestServer_RejectsGarbageButKeepsConnection(t *testing.T) {
	testServer := startTestServer(t)

	ws := dial(t, testServer)

	// Given: an unknown message type
	writeMessage(t, ws, map[string]any{"type": "teleport"})

	// Then: the server answers with an error and keeps the connection open
	reply := readMessage(t, ws)
	assert.Equal(t, "error", reply["type"])

	// And: the connection still works
	writeMessage(t, ws, map[string]any{"type": "create_room"})
	created := readMessage(t, ws)
	assert.Equal(t, "room_created", created["type"])
}

func TestServer_JoinUnknownRoom(t *testing.T) {
	testServer := startTestServer(t)

	ws := dial(t, testServer)

	writeMessage(t, ws, map[string]any{"type": "join_room", "room_id": "ffffff"})

	reply := readMessage(t, ws)
	assert.Equal(t, "error", reply["type"])
	assert.Contains(t, reply["message"], "not found")
}
