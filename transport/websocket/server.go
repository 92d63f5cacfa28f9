package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
	"github.com/rocketscienceinc/tetris-backend/internal/usecase"
)

type roomService interface {
	Join(ctx context.Context, peer usecase.Peer, name, code string) (uint64, string, error)
	Leave(ctx context.Context, clientID uint64) error
	StartGame(ctx context.Context, clientID uint64, req protocol.StartGameRequest) (string, error)
	Forward(ctx context.Context, clientID uint64, update protocol.Update) error
}

type Server struct {
	logger   *slog.Logger
	rooms    roomService
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, clientID uint64, msg protocol.Message) error
}

func New(logger *slog.Logger, rooms roomService) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		rooms:  rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]func(context.Context, uint64, protocol.Message) error),
	}

	server.handlers[protocol.ActionStartGameRequest] = server.handleStartRequest
	server.handlers[protocol.ActionClientUpdate] = server.handleUpdate

	return server
}

// Handler serves the relay endpoint at /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS upgrades the connection, joins the requested room and relays
// messages until the client goes away.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	name := r.URL.Query().Get("name")
	code := r.URL.Query().Get("code")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConn(ws)

	if name == "" {
		log.Info("connection without a name")
		_ = conn.Close(websocket.ClosePolicyViolation, "name is required")
		return
	}

	clientID, code, err := that.rooms.Join(ctx, conn, name, code)
	if err != nil {
		log.Error("failed to join room", "error", err)
		_ = conn.Close(websocket.CloseInternalServerErr, "could not join a room")
		return
	}

	log = log.With("client", clientID, "code", code)
	log.Info("WebSocket connection established")

	defer func() {
		if err = that.rooms.Leave(context.WithoutCancel(ctx), clientID); err != nil {
			log.Error("failed to leave room", "error", err)
		}
		_ = conn.Close(websocket.CloseNormalClosure, "")
		log.Info("WebSocket connection closed")
	}()

	if err = that.handleMessages(ctx, clientID, conn); err != nil {
		log.Info("stopped handling messages", "reason", err)
	}
}

// handleMessages - processes messages from the client. Any frame that is not
// a valid client message ends the connection.
func (that *Server) handleMessages(ctx context.Context, clientID uint64, conn *Conn) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msg, err := conn.Receive()
		if err != nil {
			return err
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			return fmt.Errorf("%w: %s is not sent by clients", protocol.ErrUnknownAction, msg.Action)
		}

		if err = handler(ctx, clientID, msg); err != nil {
			return fmt.Errorf("failed to handle %s: %w", msg.Action, err)
		}
	}
}
