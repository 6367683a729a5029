package math2d

import "math"

// Rot is a rotation stored as sine and cosine.
type Rot struct {
	S, C float64
}

// IdentityRot is the zero-angle rotation.
var IdentityRot = Rot{S: 0, C: 1}

// NewRot initializes a rotation from an angle in radians.
func NewRot(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

// Angle returns the rotation angle in radians.
func (q Rot) Angle() float64 {
	return math.Atan2(q.S, q.C)
}

// Apply rotates v.
func (q Rot) Apply(v Vec2) Vec2 {
	return Vec2{q.C*v[0] - q.S*v[1], q.S*v[0] + q.C*v[1]}
}

// ApplyT inverse rotates v.
func (q Rot) ApplyT(v Vec2) Vec2 {
	return Vec2{q.C*v[0] + q.S*v[1], -q.S*v[0] + q.C*v[1]}
}

// Mul composes two rotations: q * r.
func (q Rot) Mul(r Rot) Rot {
	return Rot{
		S: q.S*r.C + q.C*r.S,
		C: q.C*r.C - q.S*r.S,
	}
}

// MulT composes the transpose of q with r: qT * r.
func (q Rot) MulT(r Rot) Rot {
	return Rot{
		S: q.C*r.S - q.S*r.C,
		C: q.C*r.C + q.S*r.S,
	}
}

// Transform is a translation plus a rotation. It represents the position
// and orientation of a rigid frame.
type Transform struct {
	P Vec2
	Q Rot
}

// Identity is the identity transform.
var Identity = Transform{Q: IdentityRot}

// NewTransform builds a transform from a position and an angle in radians.
func NewTransform(position Vec2, angle float64) Transform {
	return Transform{P: position, Q: NewRot(angle)}
}

// Apply maps a local point into the parent frame.
func (xf Transform) Apply(v Vec2) Vec2 {
	return Vec2{
		(xf.Q.C*v[0] - xf.Q.S*v[1]) + xf.P[0],
		(xf.Q.S*v[0] + xf.Q.C*v[1]) + xf.P[1],
	}
}

// ApplyT maps a point from the parent frame into the local frame.
func (xf Transform) ApplyT(v Vec2) Vec2 {
	px := v[0] - xf.P[0]
	py := v[1] - xf.P[1]
	return Vec2{
		xf.Q.C*px + xf.Q.S*py,
		-xf.Q.S*px + xf.Q.C*py,
	}
}

// Mul composes two transforms: A * B.
func (xf Transform) Mul(b Transform) Transform {
	return Transform{
		P: xf.Q.Apply(b.P).Add(xf.P),
		Q: xf.Q.Mul(b.Q),
	}
}

// MulT returns inverse(A) * B, i.e. B expressed in the frame of A.
func (xf Transform) MulT(b Transform) Transform {
	return Transform{
		P: xf.Q.ApplyT(b.P.Sub(xf.P)),
		Q: xf.Q.MulT(b.Q),
	}
}
