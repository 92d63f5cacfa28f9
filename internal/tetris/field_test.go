package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillRow occupies every column of row y except the listed holes.
func fillRow(f *Field, y int, holes ...int) {
	skip := make(map[int]bool, len(holes))
	for _, h := range holes {
		skip[h] = true
	}

	for x := 0; x < f.width; x++ {
		if !skip[x] {
			f.rows[y][x] = Cell{PieceID: 1000 + y, Kind: KindO}
		}
	}
}

func TestKind_Rotations(t *testing.T) {
	t.Run("four rotations return to the start", func(t *testing.T) {
		for _, kind := range Kinds {
			first := kind.Cells(0)
			again := define(kind.Size(), kind.Cells(3)).rotations[1]
			assert.ElementsMatch(t, first, again, "kind %s", kind)
		}
	})

	t.Run("T points down after two turns", func(t *testing.T) {
		assert.ElementsMatch(t, []Vec{{1, 2}, {2, 1}, {1, 1}, {0, 1}}, KindT.Cells(2))
	})

	t.Run("cells stay inside the bounding box", func(t *testing.T) {
		for _, kind := range Kinds {
			for r := 0; r < 4; r++ {
				for _, c := range kind.Cells(r) {
					assert.True(t, c.X >= 0 && c.X < kind.Size() && c.Y >= 0 && c.Y < kind.Size())
				}
			}
		}
	})

	t.Run("garbage has no shape", func(t *testing.T) {
		assert.Nil(t, KindGarbage.Cells(0))
		assert.Zero(t, KindGarbage.Size())
	})
}

func TestField_Collide(t *testing.T) {
	f := NewField(10, 40)

	t.Run("cells above the top never collide", func(t *testing.T) {
		for _, kind := range Kinds {
			for r := 0; r < 4; r++ {
				for x := 0; x+kind.Size() <= f.Width(); x++ {
					piece := Piece{Kind: kind, Rotation: r, Position: Vec{X: x, Y: -10}}
					assert.False(t, f.Collide(piece), "kind %s rotation %d x %d", kind, r, x)
				}
			}
		}
	})

	t.Run("side and bottom walls", func(t *testing.T) {
		i := Piece{Kind: KindI, Position: Vec{X: 0, Y: 0}}

		assert.False(t, f.Collide(i))
		assert.True(t, f.Collide(i.Moved(Vec{X: -1})))
		assert.True(t, f.Collide(i.Moved(Vec{X: 7})))
		assert.False(t, f.Collide(i.Moved(Vec{X: 6, Y: 38})))
		assert.True(t, f.Collide(i.Moved(Vec{Y: 39})))
	})

	t.Run("occupied cells", func(t *testing.T) {
		// Given: a single locked cell
		f := NewField(10, 40)
		f.rows[10][4] = Cell{PieceID: 1, Kind: KindT}

		// Then: a piece overlapping it collides and one beside it does not
		o := Piece{Kind: KindO, Position: Vec{X: 3, Y: 9}}
		assert.True(t, f.Collide(o))
		assert.False(t, f.Collide(o.Moved(Vec{X: 2})))
	})
}

func TestField_HardDropPosition(t *testing.T) {
	// Given: a field with a ledge at row 30 under columns 0..4
	f := NewField(10, 40)
	for x := 0; x < 5; x++ {
		f.rows[30][x] = Cell{PieceID: 1, Kind: KindJ}
	}

	// When: an O piece is dropped above the ledge and beside it
	above := f.HardDropPosition(Piece{Kind: KindO, Position: Vec{X: 2, Y: 0}})
	beside := f.HardDropPosition(Piece{Kind: KindO, Position: Vec{X: 6, Y: 0}})

	// Then: it lands on the ledge or the floor
	assert.Equal(t, Vec{X: 2, Y: 28}, above)
	assert.Equal(t, Vec{X: 6, Y: 38}, beside)
}

func TestField_ClearFullRows(t *testing.T) {
	// Given: two full rows around a partial one
	f := NewField(4, 6)
	fillRow(f, 5)
	fillRow(f, 4, 1)
	fillRow(f, 3)

	// When: full rows are cleared
	cleared := f.clearFullRows()

	// Then: the partial row falls to the bottom and empty rows fill the top
	require.Equal(t, 2, cleared)
	assert.Equal(t, []string{"....", "....", "....", "....", "....", "O.OO"}, f.Rows())
}

func TestField_InsertGarbage(t *testing.T) {
	// Given: a field with one piece cell on the floor
	f := NewField(4, 5)
	f.rows[4][0] = Cell{PieceID: 3, Kind: KindL}

	// When: two garbage rows come in with a hole in column 2
	f.insertGarbage(2, 2)

	// Then: the old floor moved up and the new rows keep their hole
	assert.Equal(t, []string{"....", "....", "L...", "GG.G", "GG.G"}, f.Rows())

	t.Run("overflow discards the top", func(t *testing.T) {
		f := NewField(3, 2)
		f.rows[0][0] = Cell{PieceID: 1, Kind: KindS}

		f.insertGarbage(5, 0)

		assert.Equal(t, []string{".GG", ".GG"}, f.Rows())
	})
}
