package geom

import "math"

// Vec3 is a point or a scale in 3-space.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Zero is the origin, the zero value of Vec3.
var Zero = Vec3{}

// V is a convenience constructor for Vec3.
func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Splat returns a vector with every component set to v.
func Splat(v float64) Vec3 { return Vec3{v, v, v} }

// One is the unit scale.
func One() Vec3 { return Splat(1) }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// SqrMagnitude returns the squared length of v.
func (v Vec3) SqrMagnitude() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

// Magnitude returns the length of v.
func (v Vec3) Magnitude() float64 { return math.Sqrt(v.SqrMagnitude()) }

// Distance returns the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Magnitude() }

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool { return v == Zero }

// Lerp interpolates linearly from a to b; t is clamped to [0, 1].
func Lerp(a, b Vec3, t float64) Vec3 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return a.Add(b.Sub(a).Scale(t))
}
