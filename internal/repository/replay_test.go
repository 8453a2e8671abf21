package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/filler-arbiter/internal/apperror"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReplay(t *testing.T, id string) *entity.Replay {
	t.Helper()

	piece, err := entity.NewPiece(2, 1, []bool{true, true})
	require.NoError(t, err)

	placement := entity.NewPoint(4, 5)

	return &entity.Replay{
		ID:      id,
		Players: []string{"alice", "bob"},
		Plateau: entity.PlateauInfo{
			Width:        50,
			Height:       50,
			Player1Start: entity.NewPoint(5, 5),
			Player2Start: entity.NewPoint(44, 44),
		},
		History: []entity.TurnRecord{
			{Player: entity.Player1, Piece: piece, RawResponse: "alice 4 5", Placement: &placement},
			{Player: entity.Player2, Piece: piece, Error: "agent timed out after 2s"},
		},
	}
}

func TestReplayRepository_CreateOrUpdate(t *testing.T) {
	t.Run("CreateOrUpdate_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		replayRepo := NewReplayRepository(st.Storage, 0)

		// Given: a finished match replay
		replay := sampleReplay(t, "123")

		// When: CreateOrUpdate is called
		err := replayRepo.CreateOrUpdate(ctx, replay)

		// Then: no error should be returned, and replay is stored
		require.NoError(t, err)
	})

	t.Run("CreateOrUpdate_WithTTL", func(t *testing.T) {
		ctx, st := suite.New(t)

		replayRepo := NewReplayRepository(st.Storage, time.Hour)

		// When: a replay is stored with a ttl
		require.NoError(t, replayRepo.CreateOrUpdate(ctx, sampleReplay(t, "ttl")))

		// Then: the key expires
		ttl, err := st.Storage.TTL(ctx, "replay:ttl").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("CreateOrUpdate_MissingID", func(t *testing.T) {
		ctx, st := suite.New(t)

		replayRepo := NewReplayRepository(st.Storage, 0)

		err := replayRepo.CreateOrUpdate(ctx, sampleReplay(t, ""))

		require.ErrorIs(t, err, ErrMissingReplayID)
	})
}

func TestReplayRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		replayRepo := NewReplayRepository(st.Storage, 0)

		// Given: a stored replay
		replay := sampleReplay(t, "123")

		err := replayRepo.CreateOrUpdate(ctx, replay)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedReplay, err := replayRepo.GetByID(ctx, replay.ID)

		// Then: the retrieved replay should match the saved replay
		require.NoError(t, err)
		require.Equal(t, replay, retrievedReplay)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		replayRepo := NewReplayRepository(st.Storage, 0)

		nonExistentReplayID := "9999999"

		// When: GetByID is called with non-existent ID
		retrievedReplay, err := replayRepo.GetByID(ctx, nonExistentReplayID)

		// Then: an ErrReplayNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrReplayNotFound)
		assert.Nil(t, retrievedReplay)
	})
}

func TestReplayRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		replayRepo := NewReplayRepository(st.Storage, 0)

		// Given: a stored replay
		replay := sampleReplay(t, "123")

		err := replayRepo.CreateOrUpdate(ctx, replay)
		require.NoError(t, err)

		// When: DeleteByID is called with existing ID
		err = replayRepo.DeleteByID(ctx, replay.ID)

		// Then: no error should be returned
		require.NoError(t, err)

		_, err = replayRepo.GetByID(ctx, replay.ID)
		require.ErrorIs(t, err, apperror.ErrReplayNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		replayRepo := NewReplayRepository(st.Storage, 0)

		// Given: a non-existent replay ID
		nonExistentReplayID := "9999999"

		// When: DeleteByID is called with non-existent ID
		err := replayRepo.DeleteByID(ctx, nonExistentReplayID)

		// Then: an ErrReplayNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrReplayNotFound)
	})
}
