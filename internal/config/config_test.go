package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("defaults fill what the file leaves out", func(t *testing.T) {
		// Given: a config file with only a port
		path := writeConfig(t, "http-port: \"7000\"\n")

		// When: it is loaded
		conf := MustLoad(path)

		// Then: everything else has its default
		assert.Equal(t, "7000", conf.HTTPPort)
		assert.Equal(t, "8081", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2, conf.Room.Capacity)

		rules, err := conf.Rules.GameRules()
		require.NoError(t, err)
		assert.Equal(t, tetris.DefaultRules(), rules)

		prefs := conf.Preferences.SchedulerPreferences()
		require.NotNil(t, prefs.Autoshift)
		assert.InDelta(t, 10, prefs.Autoshift.InitialDelay, 0)
	})

	t.Run("missing file panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
		})
	})
}

func TestRules_GameRules(t *testing.T) {
	t.Run("unlimited resets and no kicks", func(t *testing.T) {
		rules := Rules{FieldWidth: 8, FieldHeight: 20, FallDelay: 1, LockDelay: 1, MoveResetLimit: -1, WallKicks: "none", BagPreview: 1}

		got, err := rules.GameRules()

		require.NoError(t, err)
		assert.Nil(t, got.MoveResetLimit)
		assert.Same(t, tetris.KicksNone, got.WallKicks)
	})

	t.Run("unknown kick table", func(t *testing.T) {
		rules := Rules{FieldWidth: 10, FieldHeight: 40, WallKicks: "srs-plus", BagPreview: 5}

		_, err := rules.GameRules()

		require.ErrorIs(t, err, tetris.ErrUnknownKickTable)
	})
}

func TestPreferences_Disabled(t *testing.T) {
	prefs := Preferences{SoftDrop: 4}

	got := prefs.SchedulerPreferences()

	assert.Nil(t, got.Autoshift)
	assert.InDelta(t, 4, got.SoftDrop, 0)
}
