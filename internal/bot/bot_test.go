package bot

import (
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
	"github.com/rocketscienceinc/tetris-backend/internal/replication"
	"github.com/rocketscienceinc/tetris-backend/internal/scheduler"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

type recorder struct {
	sent []protocol.Message
}

func (that *recorder) Send(msg protocol.Message) error {
	that.sent = append(that.sent, msg)
	return nil
}

func (that *recorder) count(action string, updateType string) int {
	n := 0
	for _, msg := range that.sent {
		if msg.Action != action {
			continue
		}
		if updateType != "" {
			update, err := protocol.DecodeUpdateMessage(msg)
			if err != nil || update.Type() != updateType {
				continue
			}
		}
		n++
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func message(t *testing.T, action string, payload any) protocol.Message {
	t.Helper()

	msg, err := protocol.NewMessage(action, payload)
	require.NoError(t, err)

	return msg
}

func TestChoose(t *testing.T) {
	t.Run("O piece goes flat into a corner", func(t *testing.T) {
		// Given: an empty field with an O piece falling
		var game *tetris.Game
		for seed := uint32(0); ; seed++ {
			game = tetris.NewGame(tetris.DefaultRules(), seed)
			require.True(t, game.Spawn())
			if piece, _ := game.Falling(); piece.Kind == tetris.KindO {
				break
			}
		}

		// When: a placement is chosen
		placement, err := Choose(game)

		// Then: it touches a wall, leaving two columns of height two
		require.NoError(t, err)
		assert.InDelta(t, weightHeight*4+weightBumpiness*2, placement.Score, 1e-9)

		piece, _ := game.Falling()
		piece.Rotation = placement.Rotation
		piece.Position.X = placement.X
		xs := map[int]bool{}
		for _, c := range piece.Cells() {
			xs[c.X] = true
		}
		assert.True(t, (xs[0] && xs[1]) || (xs[8] && xs[9]), "columns %v", xs)
	})

	t.Run("no falling piece", func(t *testing.T) {
		game := tetris.NewGame(tetris.DefaultRules(), 1)

		_, err := Choose(game)

		require.ErrorIs(t, err, ErrNoPlacement)
	})
}

func TestEvaluate_ClearedRowsDoNotCount(t *testing.T) {
	// Given: a field whose bottom row is full except for one column
	game := tetris.NewGame(tetris.DefaultRules(), 3)
	require.True(t, game.Spawn())
	game.AddGarbage(1)
	lines := game.ApplyGarbage()
	require.Equal(t, []int{1}, lines)

	field := game.Field()
	hole := -1
	for x := range field.Width() {
		if field.At(x, field.Height()-1).Empty() {
			hole = x
		}
	}
	require.GreaterOrEqual(t, hole, 0)

	// When: a vertical I fills the hole
	column := tetris.KindI.Cells(1)[0].X
	piece := tetris.Piece{Kind: tetris.KindI, Rotation: 1, Position: tetris.Vec{X: hole - column}}
	piece.Position = field.HardDropPosition(piece)

	// Then: the cleared row is gone from the heights and counts as a line
	bumpiness := 6
	if hole == 0 || hole == field.Width()-1 {
		bumpiness = 3
	}

	score := evaluate(field, piece)
	assert.False(t, math.IsInf(score, 0))
	assert.InDelta(t, weightHeight*3+weightLines+weightBumpiness*float64(bumpiness), score, 1e-9)
}

func startSolo(t *testing.T, session *replication.Session, seed uint32) {
	t.Helper()

	rules, err := tetris.DefaultRules().MarshalJSON()
	require.NoError(t, err)

	require.NoError(t, session.HandleMessage(message(t, protocol.ActionRoomCode, "b0b")))
	require.NoError(t, session.HandleMessage(message(t, protocol.ActionRoomState, protocol.RoomState{Index: 0, Names: []string{"bot"}})))
	require.NoError(t, session.HandleMessage(message(t, protocol.ActionStartGame, protocol.StartGame{Seed: seed, Rules: rules, Players: 1})))
}

func TestPlayer_PlaysTheLocalGame(t *testing.T) {
	// Given: a solo match
	out := &recorder{}
	session := replication.NewSession(testLogger(), out, scheduler.DefaultPreferences())
	startSolo(t, session, 99)

	player := NewPlayer(testLogger(), Config{Rules: tetris.DefaultRules(), ThinkTicks: 1})

	// When: the bot drives for a while
	for range 3000 {
		player.Drive(session)
		session.Tick()
	}

	// Then: it has locked many pieces and is still alive
	assert.True(t, session.InMatch())
	assert.GreaterOrEqual(t, out.count(protocol.ActionClientUpdate, "lock_down"), 20)
}

func TestPlayer_AutoStart(t *testing.T) {
	t.Run("host requests a match after a pause", func(t *testing.T) {
		out := &recorder{}
		session := replication.NewSession(testLogger(), out, scheduler.DefaultPreferences())
		require.NoError(t, session.HandleMessage(message(t, protocol.ActionRoomState, protocol.RoomState{Index: 0, Names: []string{"bot", "ann"}})))

		player := NewPlayer(testLogger(), Config{Rules: tetris.DefaultRules(), AutoStart: true})

		for range startDelay - 1 {
			player.Drive(session)
		}
		assert.Zero(t, out.count(protocol.ActionStartGameRequest, ""))

		player.Drive(session)
		assert.Equal(t, 1, out.count(protocol.ActionStartGameRequest, ""))

		for range startDelay {
			player.Drive(session)
		}
		assert.Equal(t, 1, out.count(protocol.ActionStartGameRequest, ""), "asks only once per pause")
	})

	t.Run("guest never asks", func(t *testing.T) {
		out := &recorder{}
		session := replication.NewSession(testLogger(), out, scheduler.DefaultPreferences())
		require.NoError(t, session.HandleMessage(message(t, protocol.ActionRoomState, protocol.RoomState{Index: 1, Names: []string{"ann", "bot"}})))

		player := NewPlayer(testLogger(), Config{AutoStart: true})
		for range 2 * startDelay {
			player.Drive(session)
		}

		assert.Empty(t, out.sent)
	})
}
