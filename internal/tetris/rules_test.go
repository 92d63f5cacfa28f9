package tetris

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules(t *testing.T) {
	t.Run("serialized rules load back", func(t *testing.T) {
		// Given: rules with asira kicks and no move reset limit
		rules := DefaultRules()
		rules.WallKicks = KicksAsira
		rules.MoveResetLimit = nil

		data, err := json.Marshal(rules)
		require.NoError(t, err)
		assert.JSONEq(t, `{"field_size":{"x":10,"y":40},"fall_delay":60,"lock_delay":30,
			"move_reset_limit":null,"wall_kicks":"asira","bag_preview":5}`, string(data))

		// When: they are loaded
		loaded, err := LoadRules(data)

		// Then: the same table instance is selected
		require.NoError(t, err)
		assert.Same(t, KicksAsira, loaded.WallKicks)
		assert.Nil(t, loaded.MoveResetLimit)
		assert.Equal(t, rules, loaded)
	})

	t.Run("unknown kick table", func(t *testing.T) {
		_, err := LoadRules([]byte(`{"field_size":{"x":10,"y":40},"fall_delay":1,"lock_delay":1,"wall_kicks":"srs+","bag_preview":5}`))

		require.ErrorIs(t, err, ErrUnknownKickTable)
	})

	t.Run("non positive delay", func(t *testing.T) {
		_, err := LoadRules([]byte(`{"field_size":{"x":10,"y":40},"fall_delay":0,"lock_delay":1,"wall_kicks":"none","bag_preview":5}`))

		require.ErrorIs(t, err, ErrInvalidRules)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := LoadRules([]byte(`[`))

		require.Error(t, err)
	})
}

func TestKickTable_Offsets(t *testing.T) {
	t.Run("zero offset comes first", func(t *testing.T) {
		for _, table := range []*KickTable{KicksNone, KicksStandard, KicksAsira} {
			for _, kind := range Kinds {
				for r := 0; r < 4; r++ {
					assert.Equal(t, Vec{}, table.Offsets(kind, r, (r+1)%4, 1)[0])
					assert.Equal(t, Vec{}, table.Offsets(kind, r, (r+3)%4, -1)[0])
				}
			}
		}
	})

	t.Run("y is flipped", func(t *testing.T) {
		// 0->1 for JLSTZ lists (-1,+1) third, which points up the screen.
		assert.Equal(t, Vec{X: -1, Y: -1}, KicksStandard.Offsets(KindT, 0, 1, 1)[3])
	})

	t.Run("counter clockwise uses the reverse transition", func(t *testing.T) {
		// 1->0 is stored at index 1.
		assert.Equal(t, Vec{X: 2, Y: 0}, KicksStandard.Offsets(KindI, 1, 0, -1)[2])
	})

	t.Run("lookup", func(t *testing.T) {
		table, err := LookupKickTable("standard")
		require.NoError(t, err)
		assert.Same(t, KicksStandard, table)

		_, err = LookupKickTable("")
		assert.ErrorIs(t, err, ErrUnknownKickTable)
	})
}
