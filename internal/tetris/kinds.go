package tetris

// Vec is an integer grid offset. Y grows downwards.
type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (that Vec) Add(other Vec) Vec {
	return Vec{X: that.X + other.X, Y: that.Y + other.Y}
}

// Kind identifies a piece shape. KindNone marks an empty cell and
// KindGarbage a filler row cell; neither can fall.
type Kind uint8

const (
	KindNone Kind = iota
	KindI
	KindO
	KindT
	KindJ
	KindL
	KindS
	KindZ
	KindGarbage
)

// Kinds is the fixed set drawn by the bag, in catalog order.
var Kinds = [7]Kind{KindI, KindO, KindT, KindJ, KindL, KindS, KindZ}

type shape struct {
	size      int
	rotations [4][]Vec
}

var catalog = map[Kind]shape{
	KindI: define(4, []Vec{{0, 1}, {1, 1}, {2, 1}, {3, 1}}),
	KindO: define(2, []Vec{{0, 0}, {0, 1}, {1, 0}, {1, 1}}),
	KindT: define(3, []Vec{{1, 0}, {0, 1}, {1, 1}, {2, 1}}),
	KindJ: define(3, []Vec{{0, 0}, {0, 1}, {1, 1}, {2, 1}}),
	KindL: define(3, []Vec{{2, 0}, {0, 1}, {1, 1}, {2, 1}}),
	KindS: define(3, []Vec{{1, 0}, {2, 0}, {0, 1}, {1, 1}}),
	KindZ: define(3, []Vec{{0, 0}, {1, 0}, {1, 1}, {2, 1}}),
}

// define derives the three clockwise rotations inside a size x size box.
func define(size int, cells []Vec) shape {
	s := shape{size: size}
	s.rotations[0] = cells

	for i := 1; i < 4; i++ {
		prev := s.rotations[i-1]
		next := make([]Vec, len(prev))
		for j, v := range prev {
			next[j] = Vec{X: size - 1 - v.Y, Y: v.X}
		}
		s.rotations[i] = next
	}

	return s
}

// Size is the edge of the kind's bounding box, 0 for non-piece kinds.
func (that Kind) Size() int {
	return catalog[that].size
}

// Cells returns the offsets occupied in the given rotation. The slice is shared.
func (that Kind) Cells(rotation int) []Vec {
	s, ok := catalog[that]
	if !ok {
		return nil
	}

	return s.rotations[rotation&3]
}

func (that Kind) String() string {
	switch that {
	case KindI:
		return "I"
	case KindO:
		return "O"
	case KindT:
		return "T"
	case KindJ:
		return "J"
	case KindL:
		return "L"
	case KindS:
		return "S"
	case KindZ:
		return "Z"
	case KindGarbage:
		return "G"
	default:
		return "."
	}
}

// Piece is a falling instance. It is a value; mutations replace it.
type Piece struct {
	ID       int  `json:"id"`
	Kind     Kind `json:"kind"`
	Position Vec  `json:"position"`
	Rotation int  `json:"rotation"`
}

// Cells returns the absolute cells the piece covers.
func (that Piece) Cells() []Vec {
	offsets := that.Kind.Cells(that.Rotation)
	cells := make([]Vec, len(offsets))
	for i, v := range offsets {
		cells[i] = that.Position.Add(v)
	}

	return cells
}

func (that Piece) Moved(offset Vec) Piece {
	that.Position = that.Position.Add(offset)
	return that
}

func (that Kind) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}
