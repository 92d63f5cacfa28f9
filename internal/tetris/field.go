package tetris

import (
	"strings"
)

// garbagePieceID tags filler cells, which belong to no piece.
const garbagePieceID = -1

// Cell is empty when Kind is KindNone.
type Cell struct {
	PieceID int  `json:"id"`
	Kind    Kind `json:"kind"`
}

func (that Cell) Empty() bool {
	return that.Kind == KindNone
}

// Field is the grid of locked cells. Row 0 is the top.
type Field struct {
	width  int
	height int
	rows   [][]Cell
}

func NewField(width, height int) *Field {
	rows := make([][]Cell, height)
	for y := range rows {
		rows[y] = make([]Cell, width)
	}

	return &Field{width: width, height: height, rows: rows}
}

func (that *Field) Width() int  { return that.width }
func (that *Field) Height() int { return that.height }

// At returns the cell at (x, y). Out of range coordinates read as empty.
func (that *Field) At(x, y int) Cell {
	if x < 0 || x >= that.width || y < 0 || y >= that.height {
		return Cell{}
	}

	return that.rows[y][x]
}

// Collide reports whether any cell of the piece is outside the side or bottom
// walls or overlaps a locked cell. Cells above row 0 are the spawn buffer and
// never collide.
func (that *Field) Collide(piece Piece) bool {
	for _, c := range piece.Cells() {
		if c.X < 0 || c.X >= that.width || c.Y >= that.height {
			return true
		}

		if c.Y < 0 {
			continue
		}

		if !that.rows[c.Y][c.X].Empty() {
			return true
		}
	}

	return false
}

// HardDropPosition is the lowest position the piece reaches falling straight down.
func (that *Field) HardDropPosition(piece Piece) Vec {
	down := Vec{Y: 1}
	for {
		next := piece.Moved(down)
		if that.Collide(next) {
			return piece.Position
		}
		piece = next
	}
}

// place writes the piece into the grid. Cells above the top are dropped.
func (that *Field) place(piece Piece) {
	for _, c := range piece.Cells() {
		if c.Y < 0 {
			continue
		}
		that.rows[c.Y][c.X] = Cell{PieceID: piece.ID, Kind: piece.Kind}
	}
}

// clearFullRows removes every full row, inserting empty rows at the top,
// and returns how many were removed.
func (that *Field) clearFullRows() int {
	kept := make([][]Cell, 0, that.height)
	for _, row := range that.rows {
		if !full(row) {
			kept = append(kept, row)
		}
	}

	cleared := that.height - len(kept)
	if cleared == 0 {
		return 0
	}

	rows := make([][]Cell, 0, that.height)
	for i := 0; i < cleared; i++ {
		rows = append(rows, make([]Cell, that.width))
	}
	that.rows = append(rows, kept...)

	return cleared
}

// insertGarbage pushes count filler rows in from the bottom with a single
// empty column at hole. Rows pushed past the top are discarded.
func (that *Field) insertGarbage(count, hole int) {
	if count <= 0 {
		return
	}
	if count > that.height {
		count = that.height
	}

	rows := make([][]Cell, 0, that.height)
	rows = append(rows, that.rows[count:]...)
	for i := 0; i < count; i++ {
		row := make([]Cell, that.width)
		for x := range row {
			if x != hole {
				row[x] = Cell{PieceID: garbagePieceID, Kind: KindGarbage}
			}
		}
		rows = append(rows, row)
	}
	that.rows = rows
}

func full(row []Cell) bool {
	for _, c := range row {
		if c.Empty() {
			return false
		}
	}

	return true
}

// Rows renders each row as one character per cell, '.' for empty.
func (that *Field) Rows() []string {
	out := make([]string, that.height)
	var sb strings.Builder
	for y, row := range that.rows {
		sb.Reset()
		for _, c := range row {
			sb.WriteString(c.Kind.String())
		}
		out[y] = sb.String()
	}

	return out
}

func (that *Field) String() string {
	return strings.Join(that.Rows(), "\n")
}
