// Package alea implements Johannes Baagøe's Alea generator with the exact
// floating point behaviour of the browser `alea` package, so a seed produces
// the same stream on every peer regardless of the runtime it plays on.
package alea

import (
	"math"
	"strconv"
)

const (
	twoPow32     = 4294967296.0
	twoPowNeg32  = 2.3283064365386963e-10
	mashInitial  = 0xefc8249d
	mashConstant = 0.02519603282416938
	multiplier   = 2091639
)

// Source is a seeded Alea stream. It is not safe for concurrent use.
type Source struct {
	s0, s1, s2 float64
	c          float64
}

// New creates a stream seeded the same way as `alea(seed)` for an integer seed.
func New(seed uint32) *Source {
	return NewString(strconv.FormatUint(uint64(seed), 10))
}

// NewString seeds the stream from an arbitrary string.
func NewString(seed string) *Source {
	m := newMash()

	that := &Source{c: 1}
	that.s0 = m.sum(" ")
	that.s1 = m.sum(" ")
	that.s2 = m.sum(" ")

	that.s0 -= m.sum(seed)
	if that.s0 < 0 {
		that.s0++
	}

	that.s1 -= m.sum(seed)
	if that.s1 < 0 {
		that.s1++
	}

	that.s2 -= m.sum(seed)
	if that.s2 < 0 {
		that.s2++
	}

	return that
}

// Float64 returns the next value in [0, 1).
func (that *Source) Float64() float64 {
	t := multiplier*that.s0 + that.c*twoPowNeg32
	that.s0 = that.s1
	that.s1 = that.s2
	that.c = math.Trunc(t)
	that.s2 = t - that.c

	return that.s2
}

// Uint32 returns the next raw 32 bit output.
func (that *Source) Uint32() uint32 {
	return uint32(that.Float64() * twoPow32)
}

// Intn returns a value in [0, n) using floor(Float64()*n).
func (that *Source) Intn(n int) int {
	return int(math.Floor(that.Float64() * float64(n)))
}

type mash struct {
	n float64
}

func newMash() *mash {
	return &mash{n: mashInitial}
}

func (that *mash) sum(data string) float64 {
	for _, r := range data {
		that.n += float64(r)
		h := mashConstant * that.n
		that.n = toUint32(h)
		h -= that.n
		h *= that.n
		that.n = toUint32(h)
		h -= that.n
		that.n += h * twoPow32
	}

	return toUint32(that.n) * twoPowNeg32
}

func toUint32(x float64) float64 {
	return math.Mod(math.Trunc(x), twoPow32)
}
