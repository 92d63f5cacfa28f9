package tetris

// GarbageFor converts the rows cleared by one lock into rows sent to the
// next player: four sends four, one to three send one fewer.
func GarbageFor(cleared int) int {
	switch {
	case cleared >= 4:
		return 4
	case cleared > 0:
		return cleared - 1
	default:
		return 0
	}
}
