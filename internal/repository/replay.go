package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/filler-arbiter/internal/apperror"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
)

var ErrMissingReplayID = errors.New("replay id is empty")

type ReplayRepository interface {
	CreateOrUpdate(ctx context.Context, replay *entity.Replay) error
	GetByID(ctx context.Context, id string) (*entity.Replay, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbReplay struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayRepository stores replays as JSON; a zero ttl keeps them forever.
func NewReplayRepository(client *redis.Client, ttl time.Duration) ReplayRepository {
	return &dbReplay{
		client: client,
		ttl:    ttl,
	}
}

func replayKey(id string) string {
	return "replay:" + id
}

func (that *dbReplay) CreateOrUpdate(ctx context.Context, replay *entity.Replay) error {
	if replay.ID == "" {
		return ErrMissingReplayID
	}

	replayJSON, err := json.Marshal(replay)
	if err != nil {
		return fmt.Errorf("could not marshal replay: %w", err)
	}

	err = that.client.Set(ctx, replayKey(replay.ID), replayJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set replay: %w", err)
	}

	return nil
}

func (that *dbReplay) GetByID(ctx context.Context, id string) (*entity.Replay, error) {
	response, err := that.client.Get(ctx, replayKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrReplayNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get replay by id: %w", err)
	}

	var existingReplay entity.Replay
	if err = json.Unmarshal([]byte(response), &existingReplay); err != nil {
		return nil, fmt.Errorf("failed to unmarshal replay: %w", err)
	}

	return &existingReplay, nil
}

func (that *dbReplay) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, replayKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete replay by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrReplayNotFound
	}

	return nil
}
