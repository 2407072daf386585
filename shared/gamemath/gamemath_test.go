package gamemath

import (
	"math"
	"testing"
)

func TestXoshiroSameSeedSameStream(t *testing.T) {
	a := NewXoshiro(42)
	b := NewXoshiro(42)
	for i := 0; i < 1000; i++ {
		if av, bv := a.Uint64(), b.Uint64(); av != bv {
			t.Fatalf("draw %d: %d != %d", i, av, bv)
		}
	}
}

func TestXoshiroDifferentSeeds(t *testing.T) {
	a := NewXoshiro(1)
	b := NewXoshiro(2)
	same := 0
	for i := 0; i < 64; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 64 {
		t.Fatal("different seeds produced identical streams")
	}
}

func TestXoshiroRanges(t *testing.T) {
	x := NewXoshiro(7)
	for i := 0; i < 10000; i++ {
		if v := x.IntRange(1, 10); v < 1 || v >= 10 {
			t.Fatalf("IntRange out of bounds: %d", v)
		}
		if v := x.IntRangeInclusive(0, 30); v < 0 || v > 30 {
			t.Fatalf("IntRangeInclusive out of bounds: %d", v)
		}
		if v := x.Float64Range(-20.5, 20.5); v < -20.5 || v >= 20.5 {
			t.Fatalf("Float64Range out of bounds: %v", v)
		}
	}
}

func TestIntNPanicsOnEmptyRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewXoshiro(0).IntN(0)
}

func TestNormalizeOrZero(t *testing.T) {
	tests := []struct {
		name string
		in   Vec2
		want Vec2
	}{
		{"zero", Vec2{}, Vec2{}},
		{"axis", Vec2{X: -3}, Vec2{X: -1}},
		{"diagonal", Vec2{X: 1, Y: 1}, Vec2{X: 1 / math.Sqrt2, Y: 1 / math.Sqrt2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.NormalizeOrZero()
			if math.Abs(got.X-tt.want.X) > 1e-15 || math.Abs(got.Y-tt.want.Y) > 1e-15 {
				t.Errorf("NormalizeOrZero(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFacingFromDirection(t *testing.T) {
	if q := FacingFromDirection(Vec2{X: 1}); q != QuatIdentity {
		t.Errorf("+X facing = %v, want identity", q)
	}
	if q := FacingFromDirection(Vec2{}); q != QuatIdentity {
		t.Errorf("zero facing = %v, want identity", q)
	}
	if q := FacingFromDirection(Vec2{X: -1}); q != (Quat{Y: 1}) {
		t.Errorf("-X facing = %v, want half turn about Y", q)
	}

	// a quarter turn onto +Z (screen down) rotates -90 degrees about Y
	q := FacingFromDirection(Vec2{Y: 1})
	if math.Abs(q.Y+math.Sqrt2/2) > 1e-12 || math.Abs(q.W-math.Sqrt2/2) > 1e-12 {
		t.Errorf("+Z facing = %v", q)
	}
	n := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if math.Abs(n-1) > 1e-12 {
		t.Errorf("quaternion not unit length: %v", n)
	}
}

func TestSignumZeroIsPositive(t *testing.T) {
	if Signum(0) != 1 || Signum(-0.5) != -1 || Signum(2) != 1 {
		t.Fatal("unexpected signum")
	}
}
