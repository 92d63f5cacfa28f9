package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
	"github.com/rocketscienceinc/tetris-backend/internal/replication"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

type roomResponse struct {
	*entity.Room
	Host    string `json:"host"`
	Ongoing bool   `json:"ongoing"`
}

type replayPlayer struct {
	Name  string          `json:"name"`
	State tetris.Snapshot `json:"state"`
}

type replayResponse struct {
	Match   *entity.Match  `json:"match"`
	Updates int            `json:"updates"`
	Players []replayPlayer `json:"players"`
}

func (that *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetRoom")

	room, err := that.roomRepo.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err != nil {
		log.Error("failed to get room", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}

	that.writeJSON(w, http.StatusOK, roomResponse{Room: room, Host: room.Host(), Ongoing: room.IsOngoing()})
}

func (that *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetMatch")

	match, err := that.matchRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, apperror.ErrMatchNotFound) {
		that.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err != nil {
		log.Error("failed to get match", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get match")
		return
	}

	that.writeJSON(w, http.StatusOK, match)
}

// handleReplay rebuilds every player's final state from the match journal.
func (that *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleReplay")

	id := chi.URLParam(r, "id")

	match, err := that.matchRepo.GetByID(r.Context(), id)
	if errors.Is(err, apperror.ErrMatchNotFound) {
		that.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err != nil {
		log.Error("failed to get match", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get match")
		return
	}

	journal, err := that.matchRepo.Journal(r.Context(), id)
	if err != nil {
		log.Error("failed to read journal", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}

	updates := make([]protocol.Broadcast, 0, len(journal))
	for _, entry := range journal {
		update, err := protocol.DecodeUpdate(entry.Update)
		if err != nil {
			log.Error("corrupt journal entry", "match", id, "error", err)
			that.writeError(w, http.StatusUnprocessableEntity, "match journal is corrupt")
			return
		}
		updates = append(updates, protocol.Broadcast{Index: entry.Index, Update: update})
	}

	games, err := replication.Replay(protocol.StartGame{
		Seed:    match.Seed,
		Rules:   match.Rules,
		Players: len(match.Players),
	}, updates)
	if err != nil {
		log.Error("failed to replay match", "match", id, "error", err)
		that.writeError(w, http.StatusUnprocessableEntity, "match cannot be replayed")
		return
	}

	resp := replayResponse{
		Match:   match,
		Updates: len(updates),
		Players: make([]replayPlayer, len(games)),
	}
	for i, game := range games {
		resp.Players[i] = replayPlayer{Name: match.Players[i], State: game.Snapshot()}
	}

	that.writeJSON(w, http.StatusOK, resp)
}
