package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidUpdate = errors.New("invalid game update")

// Update is one replicated engine action. The set of implementations is closed.
type Update interface {
	Type() string
	validate() error
}

type (
	Hold         struct{}
	Drop         struct{ Distance int }
	Shift        struct{ Dir int }
	Rotate       struct{ Dir int }
	LockDown     struct{}
	SendLines    struct{ Count int }
	ApplyGarbage struct{ Lines []int }
	NewFalling   struct{}
	EndGame      struct{}
)

func (Hold) Type() string         { return "hold" }
func (Drop) Type() string         { return "drop" }
func (Shift) Type() string        { return "shift" }
func (Rotate) Type() string       { return "rotate" }
func (LockDown) Type() string     { return "lock_down" }
func (SendLines) Type() string    { return "send_lines" }
func (ApplyGarbage) Type() string { return "apply_garbage" }
func (NewFalling) Type() string   { return "new_falling" }
func (EndGame) Type() string      { return "end_game" }

func (Hold) validate() error       { return nil }
func (LockDown) validate() error   { return nil }
func (NewFalling) validate() error { return nil }
func (EndGame) validate() error    { return nil }

func (that Drop) validate() error {
	if that.Distance < 0 {
		return fmt.Errorf("%w: negative drop distance %d", ErrInvalidUpdate, that.Distance)
	}
	return nil
}

func (that Shift) validate() error  { return validateDir(that.Dir) }
func (that Rotate) validate() error { return validateDir(that.Dir) }

func (that SendLines) validate() error {
	if that.Count < 0 {
		return fmt.Errorf("%w: negative line count %d", ErrInvalidUpdate, that.Count)
	}
	return nil
}

func (that ApplyGarbage) validate() error {
	for _, n := range that.Lines {
		if n < 0 {
			return fmt.Errorf("%w: negative garbage batch %d", ErrInvalidUpdate, n)
		}
	}
	return nil
}

func validateDir(dir int) error {
	if dir != 1 && dir != -1 {
		return fmt.Errorf("%w: direction must be 1 or -1, got %d", ErrInvalidUpdate, dir)
	}
	return nil
}

type updateJSON struct {
	Type     string `json:"type"`
	Distance *int   `json:"distance,omitempty"`
	Dir      *int   `json:"dir,omitempty"`
	Count    *int   `json:"count,omitempty"`
	Lines    []int  `json:"lines,omitempty"`
}

// EncodeUpdate renders an update as a flat tagged object, e.g. {"type":"drop","distance":2}.
func EncodeUpdate(update Update) ([]byte, error) {
	if update == nil {
		return nil, fmt.Errorf("%w: nil update", ErrInvalidUpdate)
	}

	raw := updateJSON{Type: update.Type()}
	switch u := update.(type) {
	case Drop:
		raw.Distance = &u.Distance
	case Shift:
		raw.Dir = &u.Dir
	case Rotate:
		raw.Dir = &u.Dir
	case SendLines:
		raw.Count = &u.Count
	case ApplyGarbage:
		raw.Lines = u.Lines
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal update: %w", err)
	}

	return data, nil
}

// DecodeUpdate parses a tagged object, rejecting unknown types and missing or
// out of range fields.
func DecodeUpdate(data []byte) (Update, error) {
	var raw updateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpdate, err)
	}

	var update Update
	switch raw.Type {
	case "hold":
		update = Hold{}
	case "drop":
		if raw.Distance == nil {
			return nil, fmt.Errorf("%w: drop without distance", ErrInvalidUpdate)
		}
		update = Drop{Distance: *raw.Distance}
	case "shift":
		if raw.Dir == nil {
			return nil, fmt.Errorf("%w: shift without dir", ErrInvalidUpdate)
		}
		update = Shift{Dir: *raw.Dir}
	case "rotate":
		if raw.Dir == nil {
			return nil, fmt.Errorf("%w: rotate without dir", ErrInvalidUpdate)
		}
		update = Rotate{Dir: *raw.Dir}
	case "lock_down":
		update = LockDown{}
	case "send_lines":
		if raw.Count == nil {
			return nil, fmt.Errorf("%w: send_lines without count", ErrInvalidUpdate)
		}
		update = SendLines{Count: *raw.Count}
	case "apply_garbage":
		update = ApplyGarbage{Lines: raw.Lines}
	case "new_falling":
		update = NewFalling{}
	case "end_game":
		update = EndGame{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidUpdate, raw.Type)
	}

	if err := update.validate(); err != nil {
		return nil, err
	}

	return update, nil
}

// Broadcast is an update tagged with the index of the player that produced it.
// On the wire it is the pair [index, update].
type Broadcast struct {
	Index  int
	Update Update
}

func (that Broadcast) MarshalJSON() ([]byte, error) {
	update, err := EncodeUpdate(that.Update)
	if err != nil {
		return nil, err
	}

	return json.Marshal([]any{that.Index, json.RawMessage(update)})
}

func (that *Broadcast) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUpdate, err)
	}

	if len(pair) != 2 {
		return fmt.Errorf("%w: broadcast must be [index, update]", ErrInvalidUpdate)
	}

	var index int
	if err := json.Unmarshal(pair[0], &index); err != nil || index < 0 {
		return fmt.Errorf("%w: bad sender index", ErrInvalidUpdate)
	}

	update, err := DecodeUpdate(pair[1])
	if err != nil {
		return err
	}

	that.Index = index
	that.Update = update

	return nil
}

// NewUpdateMessage wraps a client update in its envelope.
func NewUpdateMessage(update Update) (Message, error) {
	data, err := EncodeUpdate(update)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: ActionClientUpdate, Payload: data}, nil
}

// DecodeUpdateMessage extracts the update from a client update envelope.
func DecodeUpdateMessage(msg Message) (Update, error) {
	if msg.Action != ActionClientUpdate {
		return nil, fmt.Errorf("%w: %q is not an update", ErrUnknownAction, msg.Action)
	}

	return DecodeUpdate(msg.Payload)
}
