// Package gamemath holds the pure float64 helpers used by the deterministic
// simulation. Nothing in here may read the clock, allocate shared state or
// call transcendental functions.
package gamemath

// Clamp clamps v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampSpeed clamps a value to [-max, max].
func ClampSpeed(speed, max float64) float64 {
	return Clamp(speed, -max, max)
}

// Signum returns -1 for negative values and 1 otherwise, including zero.
func Signum(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Abs avoids math.Abs so the package stays trivially inlinable.
func Abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Mul rounds a product to float64 before it is used. Go may fuse x*y+z into a
// single FMA instruction on some architectures, which changes the result;
// an explicit conversion forbids the fusion.
func Mul(a, b float64) float64 {
	return float64(a * b)
}
