// Package scheduler turns held keys and elapsed ticks into engine operations:
// gravity, lock delay, move resets and autoshift.
package scheduler

import (
	"math"
	"time"

	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

// TickRate is the fixed simulation rate.
const TickRate = time.Second / 60

// Autoshift repeats a held shift. Delays are in ticks.
type Autoshift struct {
	Delay        float64 `yaml:"delay" json:"delay"`
	InitialDelay float64 `yaml:"initial-delay" json:"initial_delay"`
}

// Preferences are local to one player and never replicated.
type Preferences struct {
	// Autoshift is nil when held shifts should not repeat.
	Autoshift *Autoshift `yaml:"autoshift" json:"autoshift"`
	// SoftDrop multiplies the gravity rate while soft drop is held.
	SoftDrop float64 `yaml:"soft-drop" json:"soft_drop"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Autoshift: &Autoshift{Delay: 2, InitialDelay: 10},
		SoftDrop:  20,
	}
}

// Input is a discrete player input.
type Input uint8

const (
	InputLeftDown Input = iota + 1
	InputLeftUp
	InputRightDown
	InputRightUp
	InputRotateCW
	InputRotateCCW
	InputHardDrop
	InputHold
	InputSoftDropDown
	InputSoftDropUp
)

// Controller drives one local game. It owns all timing state so the game
// itself stays a pure state machine.
type Controller struct {
	game  *tetris.Game
	prefs Preferences

	moveReset    int
	lockProgress float64
	fallProgress float64

	repeating   bool
	shiftLeft   bool
	shiftRight  bool
	repeatShift int
	repeatDelay float64
	softDrop    bool
}

func NewController(game *tetris.Game, prefs Preferences) *Controller {
	return &Controller{
		game:  game,
		prefs: prefs,
	}
}

func (that *Controller) Game() *tetris.Game { return that.game }

func (that *Controller) LockProgress() float64 { return that.lockProgress }
func (that *Controller) FallProgress() float64 { return that.fallProgress }

// MoveResets returns the remaining lock delay refreshes.
func (that *Controller) MoveResets() int { return that.moveReset }

// Start spawns the first piece of the match.
func (that *Controller) Start() {
	if that.game.Spawn() {
		that.afterSpawn()
	}
}

func (that *Controller) active() bool {
	if that.game.Dead() {
		return false
	}
	_, ok := that.game.Falling()

	return ok
}

func (that *Controller) resetMoves() {
	if limit := that.game.Rules().MoveResetLimit; limit != nil {
		that.moveReset = *limit
	} else {
		that.moveReset = math.MaxInt
	}
}

func (that *Controller) afterSpawn() {
	that.resetMoves()
	that.lockProgress = 0
	that.tryDrop()
}

func (that *Controller) tryDrop() {
	if !that.active() {
		return
	}

	that.fallProgress = 0
	if that.game.Drop(1) > 0 {
		that.resetMoves()
	}
}

func (that *Controller) tryMoveReset() {
	if that.lockProgress > 0 && that.moveReset > 0 {
		that.moveReset--
		that.lockProgress = 0
	}
}

func (that *Controller) lockDown() {
	that.fallProgress = 0
	that.lockProgress = 0

	cleared := that.game.LockDown()
	if !that.active() {
		return
	}

	if cleared == 0 && len(that.game.PendingGarbage()) > 0 {
		that.game.ApplyGarbage()
		if !that.active() {
			return
		}
	}

	that.afterSpawn()
}

func (that *Controller) shift(dir int) {
	if !that.active() {
		return
	}

	if !that.game.Shift(dir) {
		return
	}

	that.tryMoveReset()

	if as := that.prefs.Autoshift; as != nil {
		if that.repeating {
			that.repeatDelay = as.Delay
		} else {
			that.repeatDelay = as.InitialDelay
		}
		that.repeating = true
	}
}

func (that *Controller) pressShift(dir int) {
	if !that.active() {
		return
	}

	that.repeating = false
	if dir > 0 {
		that.shiftRight = true
	} else {
		that.shiftLeft = true
	}
	that.repeatShift = dir
	that.shift(dir)
}

func (that *Controller) releaseShift(dir int) {
	if dir > 0 {
		that.shiftRight = false
	} else {
		that.shiftLeft = false
	}

	if as := that.prefs.Autoshift; as != nil && that.repeatShift == dir {
		if that.repeating {
			that.repeatDelay = as.Delay
		} else {
			that.repeatDelay = as.InitialDelay
		}
	}

	switch {
	case that.shiftLeft:
		that.repeatShift = -1
	case that.shiftRight:
		that.repeatShift = 1
	default:
		that.repeatShift = 0
	}
}

func (that *Controller) rotate(dir int) {
	if !that.active() {
		return
	}

	if that.game.Rotate(dir) {
		that.tryMoveReset()
	}
}

func (that *Controller) hardDrop() {
	if !that.active() {
		return
	}

	that.game.Drop(that.game.Rules().FieldHeight)
	that.lockDown()
}

func (that *Controller) hold() {
	if !that.active() || !that.game.HoldAvailable() {
		return
	}

	that.game.Hold()
	if that.active() {
		that.afterSpawn()
	}
}

// Handle applies one input immediately.
func (that *Controller) Handle(in Input) {
	switch in {
	case InputLeftDown:
		that.pressShift(-1)
	case InputLeftUp:
		that.releaseShift(-1)
	case InputRightDown:
		that.pressShift(1)
	case InputRightUp:
		that.releaseShift(1)
	case InputRotateCW:
		that.rotate(1)
	case InputRotateCCW:
		that.rotate(-1)
	case InputHardDrop:
		that.hardDrop()
	case InputHold:
		that.hold()
	case InputSoftDropDown:
		that.softDrop = true
	case InputSoftDropUp:
		that.softDrop = false
	}
}

// Tick advances one fixed step and reports whether the game is still alive.
func (that *Controller) Tick() bool {
	if that.game.Dead() {
		return false
	}

	if that.repeatDelay > 0 {
		that.repeatDelay--
	} else if that.prefs.Autoshift != nil && that.repeatShift != 0 {
		that.shift(that.repeatShift)
	}

	if !that.active() {
		return !that.game.Dead()
	}

	rules := that.game.Rules()
	if that.game.OnGround() {
		that.lockProgress += 1 / rules.LockDelay
		that.fallProgress = math.Min(that.fallProgress, math.Ceil(1/rules.FallDelay))

		if that.lockProgress >= 1 {
			that.lockDown()
		}
	} else {
		rate := 1 / rules.FallDelay
		if that.softDrop {
			rate *= that.prefs.SoftDrop
		}
		that.fallProgress += rate

		if that.fallProgress > 1 {
			drop := math.Floor(that.fallProgress)
			moved := that.game.Drop(int(drop))
			if moved > 0 {
				that.resetMoves()
			}
			if moved == int(drop) {
				that.fallProgress -= drop
			} else {
				that.fallProgress = 0
			}
		}
	}

	return !that.game.Dead()
}
