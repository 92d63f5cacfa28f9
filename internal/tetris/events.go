package tetris

// Action names the engine operation an Event reports.
type Action uint8

const (
	ActionHold Action = iota + 1
	ActionDrop
	ActionShift
	ActionRotate
	ActionLockDown
	ActionSendLines
	ActionApplyGarbage
	ActionNewFalling
	ActionEndGame
)

func (that Action) String() string {
	switch that {
	case ActionHold:
		return "hold"
	case ActionDrop:
		return "drop"
	case ActionShift:
		return "shift"
	case ActionRotate:
		return "rotate"
	case ActionLockDown:
		return "lock_down"
	case ActionSendLines:
		return "send_lines"
	case ActionApplyGarbage:
		return "apply_garbage"
	case ActionNewFalling:
		return "new_falling"
	case ActionEndGame:
		return "end_game"
	default:
		return "unknown"
	}
}

// Event is emitted after an operation has changed engine state. Only the
// field matching Action is meaningful.
type Event struct {
	Action   Action
	Distance int
	Dir      int
	Count    int
	Lines    []int
}

type observer struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it again.
func (that *Game) Subscribe(fn func(Event)) func() {
	that.observerSeq++
	id := that.observerSeq
	that.observers = append(that.observers, observer{id: id, fn: fn})

	return func() {
		for i, o := range that.observers {
			if o.id == id {
				that.observers = append(that.observers[:i:i], that.observers[i+1:]...)
				return
			}
		}
	}
}

func (that *Game) emit(event Event) {
	for _, o := range that.observers {
		o.fn(event)
	}
}
