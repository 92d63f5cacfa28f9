package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
)

// handleStartRequest starts a match for the room. Requests from anyone but
// the host are dropped.
func (that *Server) handleStartRequest(ctx context.Context, clientID uint64, msg protocol.Message) error {
	log := that.logger.With("method", "handleStartRequest", "client", clientID)

	req, err := protocol.DecodeStartGameRequest(msg)
	if err != nil {
		return err
	}

	matchID, err := that.rooms.StartGame(ctx, clientID, req)
	if errors.Is(err, apperror.ErrNotHost) {
		log.Info("ignoring start request from a guest")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	log.Info("match started", "match", matchID)

	return nil
}

func (that *Server) handleUpdate(ctx context.Context, clientID uint64, msg protocol.Message) error {
	update, err := protocol.DecodeUpdateMessage(msg)
	if err != nil {
		return err
	}

	if err = that.rooms.Forward(ctx, clientID, update); err != nil {
		return fmt.Errorf("failed to forward update: %w", err)
	}

	return nil
}
