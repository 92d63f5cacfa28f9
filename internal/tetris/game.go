package tetris

// Game is one player's simulation. It is driven either by a local controller
// or, for a shadow of a remote player, by received actions. A Game is not safe
// for concurrent use.
type Game struct {
	rules Rules
	field *Field

	seed        uint32
	garbageSeed uint32

	falling       *Piece
	queue         []Kind
	holding       Kind
	holdAvailable bool
	// held is set between a hold and the spawn it triggers.
	held bool
	dead bool

	pending []int
	// ready holds only the batches of the last apply, for rendering.
	ready []int

	nextID int

	observers   []observer
	observerSeq int
}

// NewGame creates an empty game. Peers sharing seed and rules stay identical
// as long as they apply the same operations in the same order.
func NewGame(rules Rules, seed uint32) *Game {
	return &Game{
		rules:         rules,
		field:         NewField(rules.FieldWidth, rules.FieldHeight),
		seed:          seed,
		garbageSeed:   seed,
		holdAvailable: true,
	}
}

func (that *Game) Rules() Rules          { return that.rules }
func (that *Game) Field() *Field         { return that.field }
func (that *Game) Holding() Kind         { return that.holding }
func (that *Game) HoldAvailable() bool   { return that.holdAvailable }
func (that *Game) Dead() bool            { return that.dead }
func (that *Game) PendingGarbage() []int { return append([]int(nil), that.pending...) }
func (that *Game) ReadyGarbage() []int   { return append([]int(nil), that.ready...) }

// Falling returns the current falling piece, if any.
func (that *Game) Falling() (Piece, bool) {
	if that.falling == nil {
		return Piece{}, false
	}

	return *that.falling, true
}

// Queue returns a copy of the preview queue, next piece first.
func (that *Game) Queue() []Kind {
	return append([]Kind(nil), that.queue...)
}

func (that *Game) Collide(piece Piece) bool {
	return that.field.Collide(piece)
}

func (that *Game) HardDropPosition(piece Piece) Vec {
	return that.field.HardDropPosition(piece)
}

// OnGround reports whether the falling piece cannot move down.
func (that *Game) OnGround() bool {
	if that.falling == nil {
		return false
	}

	return that.field.Collide(that.falling.Moved(Vec{Y: 1}))
}

func (that *Game) active() bool {
	return !that.dead && that.falling != nil
}

// Spawn puts the next queued piece into play and reports new_falling. A spawn
// that collides ends the game.
func (that *Game) Spawn() bool {
	if !that.spawn() {
		return false
	}

	that.emit(Event{Action: ActionNewFalling})

	return true
}

func (that *Game) spawn() bool {
	if that.dead {
		return false
	}

	if len(that.queue)-1 < that.rules.BagPreview {
		next, bag := NextBag(that.seed)
		that.seed = next
		that.queue = append(that.queue, bag[:]...)
	}

	kind := that.queue[0]
	piece := Piece{
		ID:   that.nextID,
		Kind: kind,
		Position: Vec{
			X: that.rules.FieldWidth/2 - (kind.Size()+1)/2,
			Y: that.rules.FieldHeight/2 - 2,
		},
	}
	that.nextID++

	that.holdAvailable = !that.held
	that.held = false

	if that.field.Collide(piece) {
		that.EndGame()
		return false
	}

	that.queue = that.queue[1:]
	that.falling = &piece

	return true
}

// Shift moves the falling piece one column. It returns false, changing
// nothing, when the target collides.
func (that *Game) Shift(dir int) bool {
	if !that.active() {
		return false
	}

	next := that.falling.Moved(Vec{X: dir})
	if that.field.Collide(next) {
		return false
	}

	that.falling = &next
	that.emit(Event{Action: ActionShift, Dir: dir})

	return true
}

// Rotate turns the falling piece a quarter clockwise (dir 1) or counter
// clockwise (dir -1), trying each wall kick offset in order.
func (that *Game) Rotate(dir int) bool {
	if !that.active() {
		return false
	}

	current := that.falling.Rotation
	target := ((current+dir)%4 + 4) % 4

	for _, kick := range that.rules.WallKicks.Offsets(that.falling.Kind, current, target, dir) {
		next := that.falling.Moved(kick)
		next.Rotation = target
		if !that.field.Collide(next) {
			that.falling = &next
			that.emit(Event{Action: ActionRotate, Dir: dir})
			return true
		}
	}

	return false
}

// Hold swaps the falling piece into the hold slot and spawns the next one.
// Only one hold is allowed per spawned piece.
func (that *Game) Hold() bool {
	if !that.active() || !that.holdAvailable {
		return false
	}

	previous := that.holding
	that.holding = that.falling.Kind
	if previous != KindNone {
		that.queue = append([]Kind{previous}, that.queue...)
	}

	that.falling = nil
	that.holdAvailable = false
	that.held = true
	that.emit(Event{Action: ActionHold})

	that.spawn()

	return true
}

// Drop moves the falling piece down up to distance rows and returns how far
// it actually moved.
func (that *Game) Drop(distance int) int {
	if !that.active() {
		return 0
	}

	moved := 0
	for ; moved < distance; moved++ {
		next := that.falling.Moved(Vec{Y: 1})
		if that.field.Collide(next) {
			break
		}
		that.falling = &next
	}

	if moved > 0 {
		that.emit(Event{Action: ActionDrop, Distance: moved})
	}

	return moved
}

// LockDown commits the falling piece, clears full rows and spawns the next
// piece. It returns the number of rows cleared. A piece locking with any cell
// above the top row ends the game instead.
func (that *Game) LockDown() int {
	if !that.active() {
		return 0
	}

	piece := *that.falling
	for _, c := range piece.Cells() {
		if c.Y < 0 {
			that.EndGame()
			return 0
		}
	}

	that.field.place(piece)
	that.falling = nil
	cleared := that.field.clearFullRows()

	that.emit(Event{Action: ActionLockDown})
	if lines := GarbageFor(cleared); lines > 0 {
		that.emit(Event{Action: ActionSendLines, Count: lines})
	}

	that.spawn()

	return cleared
}

// EndGame kills the game. Repeated calls do nothing.
func (that *Game) EndGame() {
	if that.dead {
		return
	}

	that.dead = true
	that.falling = nil
	that.emit(Event{Action: ActionEndGame})
}

// AddGarbage queues rows received from an opponent.
func (that *Game) AddGarbage(count int) {
	if that.dead || count <= 0 {
		return
	}

	that.pending = append(that.pending, count)
}

// ApplyGarbage inserts all pending garbage and returns the applied batches.
func (that *Game) ApplyGarbage() []int {
	if that.dead || len(that.pending) == 0 {
		return nil
	}

	lines := append([]int(nil), that.pending...)
	that.ApplyGarbageLines(lines)

	return lines
}

// ApplyGarbageLines inserts the given batches, each with its own hole column.
// Shadows use it to apply exactly what the owning player applied.
func (that *Game) ApplyGarbageLines(lines []int) {
	if that.dead || len(lines) == 0 {
		return
	}

	for _, count := range lines {
		var hole int
		that.garbageSeed, hole = nextHole(that.garbageSeed, that.rules.FieldWidth)
		that.field.insertGarbage(count, hole)
	}

	consumed := min(len(lines), len(that.pending))
	that.pending = that.pending[consumed:]
	that.ready = append(that.ready[:0], lines...)

	that.emit(Event{Action: ActionApplyGarbage, Lines: append([]int(nil), lines...)})

	if that.falling != nil && that.field.Collide(*that.falling) {
		that.EndGame()
	}
}

// Snapshot is a read only view of the game for reporting.
type Snapshot struct {
	Seed          uint32   `json:"seed"`
	Field         []string `json:"field"`
	Falling       *Piece   `json:"falling,omitempty"`
	Queue         []Kind   `json:"queue"`
	Holding       Kind     `json:"holding"`
	HoldAvailable bool     `json:"hold_available"`
	Dead          bool     `json:"dead"`
	Pending       []int    `json:"pending_garbage"`
	Ready         []int    `json:"ready_garbage"`
}

func (that *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Seed:          that.seed,
		Field:         that.field.Rows(),
		Queue:         that.Queue(),
		Holding:       that.holding,
		HoldAvailable: that.holdAvailable,
		Dead:          that.dead,
		Pending:       that.PendingGarbage(),
		Ready:         that.ReadyGarbage(),
	}

	if piece, ok := that.Falling(); ok {
		snap.Falling = &piece
	}

	return snap
}
