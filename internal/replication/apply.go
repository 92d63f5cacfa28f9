package replication

import (
	"fmt"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

// applyUpdate replays one received action on a shadow game. Every variant is
// handled; an unknown one is a programming error.
func applyUpdate(game *tetris.Game, update protocol.Update) error {
	switch u := update.(type) {
	case protocol.Hold:
		game.Hold()
	case protocol.Drop:
		game.Drop(u.Distance)
	case protocol.Shift:
		game.Shift(u.Dir)
	case protocol.Rotate:
		game.Rotate(u.Dir)
	case protocol.LockDown:
		game.LockDown()
	case protocol.SendLines:
		// routed to the target player by the caller
	case protocol.ApplyGarbage:
		game.ApplyGarbageLines(u.Lines)
	case protocol.NewFalling:
		game.Spawn()
	case protocol.EndGame:
		game.EndGame()
	default:
		return fmt.Errorf("unhandled update %T", update)
	}

	return nil
}

// updateFor converts a local engine event into its wire form.
func updateFor(event tetris.Event) (protocol.Update, bool) {
	switch event.Action {
	case tetris.ActionHold:
		return protocol.Hold{}, true
	case tetris.ActionDrop:
		return protocol.Drop{Distance: event.Distance}, true
	case tetris.ActionShift:
		return protocol.Shift{Dir: event.Dir}, true
	case tetris.ActionRotate:
		return protocol.Rotate{Dir: event.Dir}, true
	case tetris.ActionLockDown:
		return protocol.LockDown{}, true
	case tetris.ActionSendLines:
		return protocol.SendLines{Count: event.Count}, true
	case tetris.ActionApplyGarbage:
		return protocol.ApplyGarbage{Lines: event.Lines}, true
	case tetris.ActionNewFalling:
		return protocol.NewFalling{}, true
	case tetris.ActionEndGame:
		return protocol.EndGame{}, true
	default:
		return nil, false
	}
}

// garbageTarget is the player that receives garbage sent by index.
func garbageTarget(index, players int) int {
	return (index + 1) % players
}

// Replay rebuilds every player's game from a start message and the ordered
// updates the relay forwarded during the match.
func Replay(start protocol.StartGame, updates []protocol.Broadcast) ([]*tetris.Game, error) {
	rules, err := tetris.LoadRules(start.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	if start.Players < 1 {
		return nil, fmt.Errorf("%w: %d players", ErrBadStart, start.Players)
	}

	games := make([]*tetris.Game, start.Players)
	for i := range games {
		games[i] = tetris.NewGame(rules, start.Seed)
	}

	for n, b := range updates {
		if b.Index < 0 || b.Index >= len(games) {
			return nil, fmt.Errorf("%w: update %d from player %d", ErrUnknownPlayer, n, b.Index)
		}

		if err = applyUpdate(games[b.Index], b.Update); err != nil {
			return nil, err
		}

		if lines, ok := b.Update.(protocol.SendLines); ok && len(games) > 1 {
			games[garbageTarget(b.Index, len(games))].AddGarbage(lines.Count)
		}
	}

	return games, nil
}
