package gamemath

import "math"

// arcEpsilon matches the threshold used to treat two unit vectors as parallel.
const arcEpsilon = 1e-6

// Vec2 is a direction or position on the play plane. Y maps to world Z.
type Vec2 struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

// Vec3 is a world position.
type Vec3 struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	Z float64 `msgpack:"z"`
}

// Quat is a rotation quaternion.
type Quat struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	Z float64 `msgpack:"z"`
	W float64 `msgpack:"w"`
}

// QuatIdentity is the zero rotation.
var QuatIdentity = Quat{W: 1}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{Mul(v.X, s), Mul(v.Y, s)} }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Length returns the euclidean length.
func (v Vec2) Length() float64 {
	return math.Sqrt(Mul(v.X, v.X) + Mul(v.Y, v.Y))
}

// NormalizeOrZero returns the unit vector of v, or the zero vector when v
// has no usable length.
func (v Vec2) NormalizeOrZero() Vec2 {
	l := v.Length()
	if l == 0 || math.IsInf(l, 0) || math.IsNaN(l) {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Plane lifts a plane vector into world space at height y.
func (v Vec2) Plane(y float64) Vec3 { return Vec3{X: v.X, Y: y, Z: v.Y} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{Mul(v.X, s), Mul(v.Y, s), Mul(v.Z, s)} }

// Distance returns the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	d := v.Sub(o)
	return math.Sqrt(Mul(d.X, d.X) + Mul(d.Y, d.Y) + Mul(d.Z, d.Z))
}

func (v Vec3) IsFinite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func (q Quat) IsFinite() bool {
	return finite(q.X) && finite(q.Y) && finite(q.Z) && finite(q.W)
}

// FacingFromDirection returns the rotation that turns +X onto the plane
// direction dir. The zero direction maps to the identity.
func FacingFromDirection(dir Vec2) Quat {
	f := dir.NormalizeOrZero()
	if f.IsZero() {
		return QuatIdentity
	}
	// dot(+X, f) = f.X and cross(+X, (f.X, 0, f.Y)) = (0, -f.Y, 0)
	if f.X > 1-arcEpsilon {
		return QuatIdentity
	}
	if f.X < -1+arcEpsilon {
		return Quat{Y: 1}
	}
	y, w := -f.Y, 1+f.X
	l := math.Sqrt(Mul(y, y) + Mul(w, w))
	return Quat{Y: y / l, W: w / l}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
