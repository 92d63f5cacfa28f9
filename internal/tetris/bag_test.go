package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBag_Permutation(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 0xdeadbeef, 4294967295} {
		current := seed
		for window := 0; window < 50; window++ {
			// When: a bag is drawn
			next, bag := NextBag(current)

			// Then: every kind appears exactly once
			assert.ElementsMatch(t, Kinds[:], bag[:], "seed %d window %d", seed, window)
			assert.NotEqual(t, current, next)
			current = next
		}
	}
}

func TestNextBag_Deterministic(t *testing.T) {
	// Given: the same seed twice
	nextA, bagA := NextBag(42)
	nextB, bagB := NextBag(42)

	// Then: the draws agree
	assert.Equal(t, nextA, nextB)
	assert.Equal(t, bagA, bagB)
}

func TestNextBag_BrowserVector(t *testing.T) {
	// Given: the seed a browser peer drew its first bag from
	// When: the bag is drawn here
	next, bag := NextBag(42)

	// Then: seed and order match the browser exactly
	assert.Equal(t, uint32(2941466319), next)
	assert.Equal(t, [7]Kind{KindJ, KindZ, KindI, KindL, KindS, KindO, KindT}, bag)
}

func TestGame_SpawnOrderFollowsBags(t *testing.T) {
	// Given: a game and the bags its seed produces
	rules := DefaultRules()
	game := NewGame(rules, 7)

	seed, first := NextBag(7)
	_, second := NextBag(seed)
	expected := append(first[:], second[:]...)

	// When: each piece is dropped onto a fresh field and locked
	var spawned []Kind
	require.True(t, game.Spawn())
	for i := 0; i < 12; i++ {
		piece, ok := game.Falling()
		require.True(t, ok)
		spawned = append(spawned, piece.Kind)

		game.field = NewField(rules.FieldWidth, rules.FieldHeight)
		game.Drop(rules.FieldHeight)
		game.LockDown()
	}

	// Then: the spawn order is the concatenation of the bags
	assert.Equal(t, expected[:12], spawned)
}

func TestGame_QueueStaysFilled(t *testing.T) {
	rules := DefaultRules()
	game := NewGame(rules, 99)
	require.True(t, game.Spawn())

	for i := 0; i < 30; i++ {
		assert.GreaterOrEqual(t, len(game.Queue()), rules.BagPreview)

		game.field = NewField(rules.FieldWidth, rules.FieldHeight)
		game.Drop(rules.FieldHeight)
		game.LockDown()
	}
}
