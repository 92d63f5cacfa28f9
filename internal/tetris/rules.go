package tetris

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidRules = errors.New("invalid game rules")

// Rules are agreed once at match start and never change during it.
type Rules struct {
	FieldWidth  int
	FieldHeight int

	// FallDelay is ticks per gravity cell.
	FallDelay float64
	// LockDelay is ticks a grounded piece waits before locking.
	LockDelay float64
	// MoveResetLimit caps lock delay refreshes. Nil means unlimited.
	MoveResetLimit *int

	WallKicks  *KickTable
	BagPreview int
}

// DefaultRules mirror the browser client defaults.
func DefaultRules() Rules {
	limit := 15

	return Rules{
		FieldWidth:     10,
		FieldHeight:    40,
		FallDelay:      60,
		LockDelay:      30,
		MoveResetLimit: &limit,
		WallKicks:      KicksStandard,
		BagPreview:     5,
	}
}

type rulesJSON struct {
	FieldSize      Vec     `json:"field_size"`
	FallDelay      float64 `json:"fall_delay"`
	LockDelay      float64 `json:"lock_delay"`
	MoveResetLimit *int    `json:"move_reset_limit"`
	WallKicks      string  `json:"wall_kicks"`
	BagPreview     int     `json:"bag_preview"`
}

func (that Rules) MarshalJSON() ([]byte, error) {
	kicks := KicksStandard.Name
	if that.WallKicks != nil {
		kicks = that.WallKicks.Name
	}

	return json.Marshal(rulesJSON{
		FieldSize:      Vec{X: that.FieldWidth, Y: that.FieldHeight},
		FallDelay:      that.FallDelay,
		LockDelay:      that.LockDelay,
		MoveResetLimit: that.MoveResetLimit,
		WallKicks:      kicks,
		BagPreview:     that.BagPreview,
	})
}

func (that *Rules) UnmarshalJSON(data []byte) error {
	var raw rulesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	kicks, err := LookupKickTable(raw.WallKicks)
	if err != nil {
		return err
	}

	rules := Rules{
		FieldWidth:     raw.FieldSize.X,
		FieldHeight:    raw.FieldSize.Y,
		FallDelay:      raw.FallDelay,
		LockDelay:      raw.LockDelay,
		MoveResetLimit: raw.MoveResetLimit,
		WallKicks:      kicks,
		BagPreview:     raw.BagPreview,
	}

	if err = rules.Validate(); err != nil {
		return err
	}

	*that = rules

	return nil
}

// LoadRules parses rules as carried inside StartGame.
func LoadRules(data []byte) (Rules, error) {
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return Rules{}, err
	}

	return rules, nil
}

func (that Rules) Validate() error {
	switch {
	case that.FieldWidth < 4 || that.FieldHeight < 4:
		return fmt.Errorf("%w: field %dx%d too small", ErrInvalidRules, that.FieldWidth, that.FieldHeight)
	case that.FallDelay <= 0:
		return fmt.Errorf("%w: fall delay must be positive", ErrInvalidRules)
	case that.LockDelay <= 0:
		return fmt.Errorf("%w: lock delay must be positive", ErrInvalidRules)
	case that.MoveResetLimit != nil && *that.MoveResetLimit < 0:
		return fmt.Errorf("%w: negative move reset limit", ErrInvalidRules)
	case that.BagPreview < 0:
		return fmt.Errorf("%w: negative preview size", ErrInvalidRules)
	case that.WallKicks == nil:
		return fmt.Errorf("%w: no wall kick table", ErrInvalidRules)
	}

	return nil
}
