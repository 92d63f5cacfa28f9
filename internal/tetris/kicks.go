package tetris

import (
	"errors"
	"fmt"
)

var ErrUnknownKickTable = errors.New("unknown wall kick table")

// Kick transitions are stored in the order
// 0->1, 1->0, 1->2, 2->1, 2->3, 3->2, 3->0, 0->3.
type kickData [8][]Vec

// KickTable maps each kind to its per transition trial offsets.
type KickTable struct {
	Name  string
	kicks map[Kind]kickData
}

// Offsets returns the trial list for rotating from current to target.
// A table that lacks the kind is a broken rules definition and panics.
func (that *KickTable) Offsets(kind Kind, current, target, dir int) []Vec {
	data, ok := that.kicks[kind]
	if !ok {
		panic(fmt.Sprintf("wall kick table %q has no data for piece %s", that.Name, kind))
	}

	if dir > 0 {
		return data[current*2]
	}

	return data[target*2+1]
}

// defineKicks prepends the zero offset and flips y, since the source tables
// are written with y pointing up.
func defineKicks(raw [8][][2]int) kickData {
	var data kickData
	for i, trials := range raw {
		offsets := make([]Vec, 0, len(trials)+1)
		offsets = append(offsets, Vec{})
		for _, t := range trials {
			offsets = append(offsets, Vec{X: t[0], Y: -t[1]})
		}
		data[i] = offsets
	}

	return data
}

var (
	noKicks = defineKicks([8][][2]int{
		{{0, 0}},
		{{0, 0}},
		{{0, 0}},
		{{0, 0}},
		{{0, 0}},
		{{0, 0}},
		{{0, 0}},
		{{0, 0}},
	})

	baseKicks = defineKicks([8][][2]int{
		{{0, 0}, {-1, 0}, {-1, +1}, {0, -2}, {-1, -2}},
		{{0, 0}, {+1, 0}, {+1, -1}, {0, +2}, {+1, +2}},
		{{0, 0}, {+1, 0}, {+1, -1}, {0, +2}, {+1, +2}},
		{{0, 0}, {-1, 0}, {-1, +1}, {0, -2}, {-1, -2}},
		{{0, 0}, {+1, 0}, {+1, +1}, {0, -2}, {+1, -2}},
		{{0, 0}, {-1, 0}, {-1, -1}, {0, +2}, {-1, +2}},
		{{0, 0}, {-1, 0}, {-1, -1}, {0, +2}, {-1, +2}},
		{{0, 0}, {+1, 0}, {+1, +1}, {0, -2}, {+1, -2}},
	})

	baseIKicks = defineKicks([8][][2]int{
		{{0, 0}, {-2, 0}, {+1, 0}, {-2, -1}, {+1, +2}},
		{{0, 0}, {+2, 0}, {-1, 0}, {+2, +1}, {-1, -2}},
		{{0, 0}, {-1, 0}, {+2, 0}, {-1, +2}, {+2, -1}},
		{{0, 0}, {+1, 0}, {-2, 0}, {+1, -2}, {-2, +1}},
		{{0, 0}, {+2, 0}, {-1, 0}, {+2, +1}, {-1, -2}},
		{{0, 0}, {-2, 0}, {+1, 0}, {-2, -1}, {+1, +2}},
		{{0, 0}, {+1, 0}, {-2, 0}, {+1, -2}, {-2, +1}},
		{{0, 0}, {-1, 0}, {+2, 0}, {-1, +2}, {+2, -1}},
	})

	asiraIKicks = defineKicks([8][][2]int{
		{{0, 0}, {-2, 0}, {+1, 0}, {+1, +2}, {-2, -1}},
		{{0, 0}, {+2, 0}, {-1, 0}, {+2, +1}, {-1, -2}},
		{{0, 0}, {-1, 0}, {+2, 0}, {-1, +2}, {+2, -1}},
		{{0, 0}, {-2, 0}, {+1, 0}, {-2, +1}, {+1, -1}},
		{{0, 0}, {+2, 0}, {-1, 0}, {+2, +1}, {-1, -1}},
		{{0, 0}, {+1, 0}, {-2, 0}, {+1, +2}, {-2, -1}},
		{{0, 0}, {-2, 0}, {+1, 0}, {-2, +1}, {+1, -2}},
		{{0, 0}, {+2, 0}, {-1, 0}, {-1, +2}, {+2, -1}},
	})
)

func tableWithI(name string, iKicks, rest kickData) *KickTable {
	table := &KickTable{Name: name, kicks: map[Kind]kickData{KindI: iKicks}}
	for _, kind := range Kinds[1:] {
		table.kicks[kind] = rest
	}

	return table
}

var (
	KicksNone     = tableWithI("none", noKicks, noKicks)
	KicksStandard = tableWithI("standard", baseIKicks, baseKicks)
	KicksAsira    = tableWithI("asira", asiraIKicks, baseKicks)
)

// LookupKickTable resolves a serialized table name.
func LookupKickTable(name string) (*KickTable, error) {
	switch name {
	case KicksNone.Name:
		return KicksNone, nil
	case KicksStandard.Name:
		return KicksStandard, nil
	case KicksAsira.Name:
		return KicksAsira, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKickTable, name)
	}
}
