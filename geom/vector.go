// Package geom provides 2D vector math and line helpers for the arena.
package geom

import (
	"fmt"
	"math"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Vector2D is a 2D vector with float64 components.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec returns the vector (x, y).
func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// Polar returns a vector of the given length pointing along angle a.
func Polar(l, a float64) Vector2D {
	return Vector2D{X: l * math.Cos(a), Y: l * math.Sin(a)}
}

// PolarFrom returns base plus a vector of length l along angle a.
func PolarFrom(l, a float64, base Vector2D) Vector2D {
	return base.Add(Polar(l, a))
}

// Add returns v + o.
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale multiplies both components by f.
func (v Vector2D) Scale(f float64) Vector2D {
	return Vector2D{X: v.X * f, Y: v.Y * f}
}

// Div divides both components by f.
func (v Vector2D) Div(f float64) Vector2D {
	return Vector2D{X: v.X / f, Y: v.Y / f}
}

// Dot returns the dot product.
func (v Vector2D) Dot(o Vector2D) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Length returns the magnitude of the vector.
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns the squared magnitude.
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Angle returns the direction of the vector in [0, 2π).
func (v Vector2D) Angle() float64 {
	a := math.Atan2(v.Y, v.X)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a -= TwoPi
	}
	return a
}

// IsZero reports whether both components are zero.
func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalized returns a unit vector in the same direction.
// The zero vector normalizes to (0, 1).
func (v Vector2D) Normalized() Vector2D {
	l := v.Length()
	if l == 0 {
		return Vector2D{X: 0, Y: 1}
	}
	return v.Div(l)
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func (v *Vector2D) Normalize() {
	l := v.Length()
	if l == 0 {
		return
	}
	v.X /= l
	v.Y /= l
}

// WithLength returns a vector in the same direction with length l.
func (v Vector2D) WithLength(l float64) Vector2D {
	return v.Normalized().Scale(l)
}

// SetLength rescales v in place.
func (v *Vector2D) SetLength(l float64) {
	*v = v.WithLength(l)
}

// Rotated returns v rotated anticlockwise by a radians.
func (v Vector2D) Rotated(a float64) Vector2D {
	s, c := math.Sincos(a)
	return Vector2D{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// Rotate rotates v in place.
func (v *Vector2D) Rotate(a float64) {
	*v = v.Rotated(a)
}

// Perpendicular returns v rotated a quarter turn anticlockwise.
func (v Vector2D) Perpendicular() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Reciprocal returns the vector pointing the opposite way.
func (v Vector2D) Reciprocal() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

// Gradient returns dy/dx, infinite for vertical vectors.
func (v Vector2D) Gradient() float64 {
	if v.X == 0 {
		return math.Inf(1)
	}
	return v.Y / v.X
}

// Distance returns |v - o|.
func (v Vector2D) Distance(o Vector2D) float64 {
	return v.Sub(o).Length()
}

// DistanceSquared returns |v - o|².
func (v Vector2D) DistanceSquared(o Vector2D) float64 {
	return v.Sub(o).LengthSquared()
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y)
}

// WrapAngle maps a to [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}
