package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/protocol"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

const shutdownTimeout = 5 * time.Second

// directory is the slice of the room directory the transport needs.
type directory interface {
	CreateRoom(conn room.Conn) *room.Session
	JoinRoom(conn room.Conn, roomID string) error
	SubmitMove(conn room.Conn, row, col int) error
	Reconnect(conn room.Conn, roomID, token string) error
	HandleDisconnect(conn room.Conn)
}

type Server struct {
	logger    *slog.Logger
	directory directory
	upgrader  websocket.Upgrader
}

func New(logger *slog.Logger, directory directory, allowedOrigins []string) *Server {
	return &Server{
		logger:    logger,
		directory: directory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Start - serves the websocket endpoint until the context is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.handleUpgrade)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleUpgrade(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleUpgrade")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log.Info("connection established", "remoteAddr", ws.RemoteAddr().String())

	that.serveConn(newConn(ws))
}

// serveConn - reads frames until the peer goes away. A read error is the
// disconnect signal; everything else is a message to dispatch. Malformed
// input earns an error reply and leaves the connection open.
func (that *Server) serveConn(conn *Conn) {
	log := that.logger.With("method", "serveConn")

	defer func() {
		that.directory.HandleDisconnect(conn)
		_ = conn.close()
	}()

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			log.Info("connection closed", "reason", err)
			return
		}

		message, err := protocol.ParseClientMessage(data)
		if err != nil {
			log.Warn("rejected client message", "error", err)

			_ = conn.Send(protocol.NewError("unknown or invalid message"))

			continue
		}

		if err = that.dispatch(conn, message); err != nil {
			_ = conn.Send(protocol.NewError(err.Error()))
		}
	}
}

// dispatch - routes a parsed client message to the directory operation it
// asks for. Returned errors are replies for the sender only.
func (that *Server) dispatch(conn *Conn, message any) error {
	switch msg := message.(type) {
	case *protocol.CreateRoom:
		that.directory.CreateRoom(conn)
		return nil
	case *protocol.JoinRoom:
		return that.directory.JoinRoom(conn, msg.RoomID)
	case *protocol.PlaceStone:
		return that.directory.SubmitMove(conn, *msg.Row, *msg.Col)
	case *protocol.LeaveRoom:
		that.directory.HandleDisconnect(conn)
		return nil
	case *protocol.Reconnect:
		return that.directory.Reconnect(conn, msg.RoomID, msg.PlayerToken)
	default:
		return protocol.ErrUnknownMessageType
	}
}

// originChecker - builds the handshake origin filter from the configured
// allow-list. Requests without an Origin header (non-browser clients) and
// an empty allow-list both pass.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.ToLower(origin)] = struct{}{}
	}

	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}

		_, ok := allowed[strings.ToLower(origin)]

		return ok
	}
}
