package gamemath

import "math/bits"

// Xoshiro is xoshiro256++ seeded through SplitMix64. The algorithm is pinned
// here instead of taken from math/rand so that every peer, on every Go
// release, draws the same map from the same seed.
type Xoshiro struct {
	s [4]uint64
}

// NewXoshiro seeds a generator from a single 64-bit value.
func NewXoshiro(seed uint64) *Xoshiro {
	x := &Xoshiro{}
	sm := seed
	for i := range x.s {
		sm += 0x9e3779b97f4a7c15
		z := sm
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		x.s[i] = z ^ (z >> 31)
	}
	return x
}

// Uint64 returns the next value of the stream.
func (x *Xoshiro) Uint64() uint64 {
	s := &x.s
	result := bits.RotateLeft64(s[0]+s[3], 23) + s[0]
	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (x *Xoshiro) IntN(n int) int {
	if n <= 0 {
		panic("gamemath: IntN called with n <= 0")
	}
	bound := uint64(n)
	hi, lo := bits.Mul64(x.Uint64(), bound)
	if lo < bound {
		threshold := -bound % bound
		for lo < threshold {
			hi, lo = bits.Mul64(x.Uint64(), bound)
		}
	}
	return int(hi)
}

// IntRange returns a uniform value in [lo, hi).
func (x *Xoshiro) IntRange(lo, hi int) int {
	return lo + x.IntN(hi-lo)
}

// IntRangeInclusive returns a uniform value in [lo, hi].
func (x *Xoshiro) IntRangeInclusive(lo, hi int) int {
	return lo + x.IntN(hi-lo+1)
}

// Float64 returns a uniform value in [0, 1) with 53 bits of precision.
func (x *Xoshiro) Float64() float64 {
	return float64(x.Uint64()>>11) * (1.0 / (1 << 53))
}

// Float64Range returns a value in [lo, hi).
func (x *Xoshiro) Float64Range(lo, hi float64) float64 {
	v := lo + Mul(hi-lo, x.Float64())
	if v >= hi {
		// rounding can land exactly on hi for wide ranges
		return lo
	}
	return v
}
