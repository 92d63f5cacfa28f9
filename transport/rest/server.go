package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tetris-backend/internal/entity"
)

type roomRepo interface {
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
}

type matchRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	Journal(ctx context.Context, id string) ([]entity.JournalEntry, error)
}

type Server struct {
	logger    *slog.Logger
	roomRepo  roomRepo
	matchRepo matchRepo
}

func New(logger *slog.Logger, roomRepo roomRepo, matchRepo matchRepo) *Server {
	return &Server{
		logger:    logger.With("component", "rest"),
		roomRepo:  roomRepo,
		matchRepo: matchRepo,
	}
}

func (that *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/ping", pingHandler)
	r.Get("/rooms/{code}", that.handleGetRoom)
	r.Route("/matches/{id}", func(r chi.Router) {
		r.Get("/", that.handleGetMatch)
		r.Get("/replay", that.handleReplay)
	})

	return r
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Routes(),
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

func (that *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, map[string]string{"error": message})
}
