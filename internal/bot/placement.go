// Package bot plays the local game of a session without a human: it picks a
// placement for every piece and feeds the inputs that reach it.
package bot

import (
	"errors"
	"math"

	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

var ErrNoPlacement = errors.New("no placement for the falling piece")

// Weights for the placement score.
const (
	weightHeight    = -0.510066
	weightLines     = 0.760666
	weightHoles     = -0.35663
	weightBumpiness = -0.184483
)

type Placement struct {
	Rotation int
	X        int
	Score    float64
}

// Choose evaluates every rotation and column the falling piece could be hard
// dropped from and returns the best scoring one.
func Choose(game *tetris.Game) (Placement, error) {
	piece, ok := game.Falling()
	if !ok {
		return Placement{}, ErrNoPlacement
	}

	field := game.Field()
	best := Placement{Score: math.Inf(-1)}
	found := false

	for rotation := range 4 {
		size := piece.Kind.Size()
		for x := -size; x < field.Width()+size; x++ {
			candidate := piece
			candidate.Rotation = rotation
			candidate.Position.X = x
			if game.Collide(candidate) {
				continue
			}

			candidate.Position = game.HardDropPosition(candidate)

			score := evaluate(field, candidate)
			if !found || score > best.Score {
				best = Placement{Rotation: rotation, X: x, Score: score}
				found = true
			}
		}
	}

	if !found {
		return Placement{}, ErrNoPlacement
	}

	return best, nil
}

// evaluate scores the field as it would be after locking piece.
func evaluate(field *tetris.Field, piece tetris.Piece) float64 {
	width, height := field.Width(), field.Height()

	filled := make([][]bool, height)
	for y := range filled {
		filled[y] = make([]bool, width)
		for x := range filled[y] {
			filled[y][x] = !field.At(x, y).Empty()
		}
	}

	for _, c := range piece.Cells() {
		if c.Y < 0 {
			// locking above the field tops out
			return math.Inf(-1)
		}
		filled[c.Y][c.X] = true
	}

	lines := 0
	kept := filled[:0]
	for _, row := range filled {
		full := true
		for _, cell := range row {
			full = full && cell
		}
		if full {
			lines++
			continue
		}
		kept = append(kept, row)
	}
	// cleared rows fall away; heights are measured from the bottom
	offset := height - len(kept)

	heights := make([]int, width)
	holes := 0
	for x := range width {
		top := -1
		for y, row := range kept {
			if !row[x] {
				if top >= 0 {
					holes++
				}
				continue
			}
			if top < 0 {
				top = y
			}
		}
		if top >= 0 {
			heights[x] = height - (top + offset)
		}
	}

	aggregate, bumpiness := 0, 0
	for x, h := range heights {
		aggregate += h
		if x > 0 {
			bumpiness += abs(h - heights[x-1])
		}
	}

	return weightHeight*float64(aggregate) +
		weightLines*float64(lines) +
		weightHoles*float64(holes) +
		weightBumpiness*float64(bumpiness)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
