package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/testing/suite"
)

func TestRoomRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: a room with one member
	room := entity.NewRoom("a1b2c3")
	room.Join("ann")

	// When: CreateOrUpdate is called twice with a change in between
	require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))
	room.Join("bob")
	err := roomRepo.CreateOrUpdate(ctx, room)

	// Then: the latest state is stored
	require.NoError(t, err)

	stored, err := roomRepo.GetByCode(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "bob"}, stored.Members)
	assert.Equal(t, entity.StatusWaiting, stored.Status)
}

func TestRoomRepository_GetByCode(t *testing.T) {
	t.Run("GetByCode_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: GetByCode is called with an unknown code
		room, err := roomRepo.GetByCode(ctx, "ffffff")

		// Then: ErrRoomNotFound is returned
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Nil(t, room)
	})
}

func TestRoomRepository_DeleteByCode(t *testing.T) {
	t.Run("DeleteByCode_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a stored room
		room := entity.NewRoom("abc")
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

		// When: DeleteByCode is called
		err := roomRepo.DeleteByCode(ctx, room.Code)

		// Then: the room is gone
		require.NoError(t, err)

		_, err = roomRepo.GetByCode(ctx, room.Code)
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("DeleteByCode_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		err := roomRepo.DeleteByCode(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}
