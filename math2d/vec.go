// Package math2d provides the 2D vector, rotation, transform and sweep types
// used throughout the collision core. Vectors are mathgl's mgl64.Vec2.
package math2d

import (
	"math"

	"github.com/ByteArena/box2d-collision/settings"
	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a 2D column vector.
type Vec2 = mgl64.Vec2

// Zero is the zero vector.
var Zero = Vec2{0, 0}

// V builds a vector from its coordinates.
func V(x, y float64) Vec2 {
	return Vec2{x, y}
}

// IsValid reports whether x is neither NaN nor infinite.
func IsValid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// IsValidVec reports whether both coordinates of v are finite.
func IsValidVec(v Vec2) bool {
	return IsValid(v[0]) && IsValid(v[1])
}

// Cross performs the 2D cross product, which is a scalar.
func Cross(a, b Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// CrossVS is the cross product of a vector and a scalar.
func CrossVS(a Vec2, s float64) Vec2 {
	return Vec2{s * a[1], -s * a[0]}
}

// CrossSV is the cross product of a scalar and a vector.
func CrossSV(s float64, a Vec2) Vec2 {
	return Vec2{-s * a[1], s * a[0]}
}

// Normalize returns the unit vector along v and the original length. A
// vector shorter than epsilon is returned unchanged with length 0.
func Normalize(v Vec2) (Vec2, float64) {
	length := v.Len()
	if length < settings.Epsilon {
		return v, 0.0
	}
	inv := 1.0 / length
	return Vec2{v[0] * inv, v[1] * inv}, length
}

// Unit is Normalize without the length.
func Unit(v Vec2) Vec2 {
	n, _ := Normalize(v)
	return n
}

func Neg(v Vec2) Vec2 {
	return Vec2{-v[0], -v[1]}
}

func Abs(v Vec2) Vec2 {
	return Vec2{math.Abs(v[0]), math.Abs(v[1])}
}

func Min(a, b Vec2) Vec2 {
	return Vec2{math.Min(a[0], b[0]), math.Min(a[1], b[1])}
}

func Max(a, b Vec2) Vec2 {
	return Vec2{math.Max(a[0], b[0]), math.Max(a[1], b[1])}
}

func Distance(a, b Vec2) float64 {
	return a.Sub(b).Len()
}

func DistanceSquared(a, b Vec2) float64 {
	return a.Sub(b).LenSqr()
}

// Lerp returns (1-t)*a + t*b.
func Lerp(a, b Vec2, t float64) Vec2 {
	return a.Mul(1.0 - t).Add(b.Mul(t))
}

// Mid returns the midpoint of a and b.
func Mid(a, b Vec2) Vec2 {
	return a.Add(b).Mul(0.5)
}
