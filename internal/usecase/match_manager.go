package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/filler-arbiter/internal/apperror"
	"github.com/rocketscienceinc/filler-arbiter/internal/engine"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
)

type replayRepo interface {
	CreateOrUpdate(ctx context.Context, replay *entity.Replay) error
	GetByID(ctx context.Context, id string) (*entity.Replay, error)
}

type match interface {
	Run(ctx context.Context) engine.Termination
	Replay() entity.Replay
}

// MatchManager plays matches to completion and keeps their replays.
type MatchManager struct {
	logger     *slog.Logger
	replayRepo replayRepo
	replayPath string

	mu   sync.RWMutex
	last *entity.Replay
}

// NewMatchManager - replayRepo may be nil when no storage is configured, replayPath may be
// empty when no replay file is wanted.
func NewMatchManager(logger *slog.Logger, replayRepo replayRepo, replayPath string) *MatchManager {
	return &MatchManager{
		logger:     logger.With("component", "match_manager"),
		replayRepo: replayRepo,
		replayPath: replayPath,
	}
}

// Play runs the match and stores its replay. A match stopped through ctx is still saved.
func (that *MatchManager) Play(ctx context.Context, game match) (*entity.Replay, error) {
	matchID := uuid.NewString()
	log := that.logger.With("method", "Play", "match_id", matchID)

	log.Info("match started")
	termination := game.Run(ctx)

	replay := game.Replay()
	replay.ID = matchID

	that.mu.Lock()
	that.last = &replay
	that.mu.Unlock()

	log.Info("match finished", "reason", string(termination), "turns", len(replay.History))

	saveCtx := context.WithoutCancel(ctx)

	var errs []error
	if err := that.saveReplay(saveCtx, &replay); err != nil {
		errs = append(errs, err)
	}

	if err := that.writeReplayFile(&replay); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("failed to store replay", "error", err)
		return &replay, err
	}

	return &replay, nil
}

// GetReplay serves the last match played by this process from memory, anything older from storage.
func (that *MatchManager) GetReplay(ctx context.Context, id string) (*entity.Replay, error) {
	that.mu.RLock()
	last := that.last
	that.mu.RUnlock()

	if last != nil && last.ID == id {
		return last, nil
	}

	if that.replayRepo == nil {
		return nil, apperror.ErrReplayNotFound
	}

	replay, err := that.replayRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get replay: %w", err)
	}

	return replay, nil
}

func (that *MatchManager) saveReplay(ctx context.Context, replay *entity.Replay) error {
	if that.replayRepo == nil {
		return nil
	}

	if err := that.replayRepo.CreateOrUpdate(ctx, replay); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	return nil
}

func (that *MatchManager) writeReplayFile(replay *entity.Replay) error {
	if that.replayPath == "" {
		return nil
	}

	data, err := json.Marshal(replay)
	if err != nil {
		return fmt.Errorf("could not marshal replay: %w", err)
	}

	if err = os.WriteFile(that.replayPath, data, 0o600); err != nil {
		return fmt.Errorf("could not write replay file: %w", err)
	}

	return nil
}
