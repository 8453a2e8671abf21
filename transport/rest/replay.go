package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/filler-arbiter/internal/apperror"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
)

type replayUseCase interface {
	GetReplay(ctx context.Context, id string) (*entity.Replay, error)
}

type replayHandler struct {
	logger  *slog.Logger
	replays replayUseCase
}

func (that *replayHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := that.logger.With("method", "getByID", "replay_id", id)

	replay, err := that.replays.GetReplay(r.Context(), id)
	if errors.Is(err, apperror.ErrReplayNotFound) {
		http.Error(w, "Replay not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get replay", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(replay); err != nil {
		log.Error("failed to write replay", "error", err)
	}
}
