package math2d

import (
	"math"

	"github.com/ByteArena/box2d-collision/settings"
)

// Sweep describes the motion of a body over a time step for TOI computation.
// Shapes are defined relative to the body origin, which may not coincide
// with the center of mass, but dynamics interpolate the center of mass.
type Sweep struct {
	LocalCenter Vec2    // local center of mass position
	C0, C       Vec2    // center world positions at Alpha0 and 1
	A0, A       float64 // world angles at Alpha0 and 1

	// Alpha0 is the fraction of the current time step in [0,1] at which
	// C0 and A0 hold.
	Alpha0 float64
}

// Transform returns the interpolated transform at fraction beta in [0,1].
func (s Sweep) Transform(beta float64) Transform {
	var xf Transform
	xf.P = Lerp(s.C0, s.C, beta)
	xf.Q = NewRot((1.0-beta)*s.A0 + beta*s.A)

	// Shift to origin
	xf.P = xf.P.Sub(xf.Q.Apply(s.LocalCenter))
	return xf
}

// Advance moves the start of the sweep forward to alpha.
func (s *Sweep) Advance(alpha float64) {
	settings.Assert(s.Alpha0 < 1.0, "Sweep.Advance", "sweep already at the end of the step")
	beta := (alpha - s.Alpha0) / (1.0 - s.Alpha0)
	s.C0 = Lerp(s.C0, s.C, beta)
	s.A0 += beta * (s.A - s.A0)
	s.Alpha0 = alpha
}

// Normalize shifts both angles by a multiple of 2*pi so that A0 lies in
// [0, 2*pi).
func (s *Sweep) Normalize() {
	twoPi := 2.0 * math.Pi
	d := twoPi * math.Floor(s.A0/twoPi)
	s.A0 -= d
	s.A -= d
}
