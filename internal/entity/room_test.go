package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_Membership(t *testing.T) {
	t.Run("first member is the host", func(t *testing.T) {
		// Given: an empty room
		room := NewRoom("a1b2c3")
		assert.True(t, room.IsEmpty())
		assert.Empty(t, room.Host())

		// When: two players join
		first := room.Join("ann")
		second := room.Join("bob")

		// Then: they get join-order indices and ann hosts
		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)
		assert.Equal(t, "ann", room.Host())
		assert.True(t, room.IsFull(2))
		assert.False(t, room.IsFull(3))
	})

	t.Run("leaving shifts later members down and ends the match", func(t *testing.T) {
		// Given: a room with a match in progress
		room := NewRoom("ff")
		room.Join("ann")
		room.Join("bob")
		room.Join("cid")
		room.StartMatch("m1")
		require.True(t, room.IsOngoing())

		// When: the host leaves
		room.Leave(0)

		// Then: bob hosts and the room waits again
		assert.Equal(t, []string{"bob", "cid"}, room.Members)
		assert.Equal(t, "bob", room.Host())
		assert.Equal(t, StatusWaiting, room.Status)
		assert.Empty(t, room.MatchID)
	})

	t.Run("bad index is ignored", func(t *testing.T) {
		room := NewRoom("ff")
		room.Join("ann")

		room.Leave(5)
		room.Leave(-1)

		assert.Equal(t, []string{"ann"}, room.Members)
	})
}
