package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/testing/suite"
)

func newTestMatch(id string) *entity.Match {
	return &entity.Match{
		ID:        id,
		RoomCode:  "a1b2c3",
		Seed:      42,
		Rules:     json.RawMessage(`{"bag_preview":5}`),
		Players:   []string{"ann", "bob"},
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMatchRepository_Create(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage)

	// Given: a new match
	match := newTestMatch("m1")

	// When: it is created
	err := matchRepo.Create(ctx, match)

	// Then: it can be read back unchanged
	require.NoError(t, err)

	stored, err := matchRepo.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, match.Seed, stored.Seed)
	assert.Equal(t, match.Players, stored.Players)
	assert.JSONEq(t, string(match.Rules), string(stored.Rules))
	assert.True(t, match.StartedAt.Equal(stored.StartedAt))

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := matchRepo.Create(ctx, match)
		require.Error(t, err)
	})
}

func TestMatchRepository_GetByID(t *testing.T) {
	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		match, err := matchRepo.GetByID(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
		assert.Nil(t, match)
	})
}

func TestMatchRepository_Journal(t *testing.T) {
	t.Run("Journal_KeepsOrder", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a match with no updates
		match := newTestMatch("m2")
		require.NoError(t, matchRepo.Create(ctx, match))

		entries, err := matchRepo.Journal(ctx, match.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)

		// When: updates from both players are appended
		appended := []entity.JournalEntry{
			{Index: 0, Update: json.RawMessage(`{"type":"new_falling"}`)},
			{Index: 1, Update: json.RawMessage(`{"type":"new_falling"}`)},
			{Index: 0, Update: json.RawMessage(`{"type":"drop","distance":3}`)},
		}
		for _, entry := range appended {
			require.NoError(t, matchRepo.AppendUpdate(ctx, match.ID, entry))
		}

		// Then: the journal returns them in forwarding order
		entries, err = matchRepo.Journal(ctx, match.ID)
		require.NoError(t, err)
		require.Len(t, entries, len(appended))
		for i := range appended {
			assert.Equal(t, appended[i].Index, entries[i].Index)
			assert.JSONEq(t, string(appended[i].Update), string(entries[i].Update))
		}
	})

	t.Run("Journal_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		_, err := matchRepo.Journal(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})
}
