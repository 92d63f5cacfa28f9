package tetris

import (
	"github.com/rocketscienceinc/tetris-backend/internal/alea"
)

// NextBag draws one permutation of the seven kinds from seed and returns it
// with the seed for the following refill. The next seed is the generator's
// first output, taken before the permutation draws.
func NextBag(seed uint32) (uint32, [7]Kind) {
	random := alea.New(seed)
	next := random.Uint32()

	pool := append([]Kind(nil), Kinds[:]...)

	var bag [7]Kind
	for i := range bag {
		j := random.Intn(len(pool))
		bag[i] = pool[j]
		pool = append(pool[:j], pool[j+1:]...)
	}

	return next, bag
}

// nextHole advances the garbage stream and picks the empty column for a batch.
func nextHole(seed uint32, width int) (uint32, int) {
	random := alea.New(seed)
	next := random.Uint32()

	return next, random.Intn(width)
}
