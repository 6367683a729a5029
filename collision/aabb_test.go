package collision_test

import (
	"testing"

	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/go-gl/mathgl/mgl64"
)

func TestAABBContainsCombine(t *testing.T) {
	boxes := []collision.AABB{
		collision.NewAABB(math2d.V(0, 0), math2d.V(1, 1)),
		collision.NewAABB(math2d.V(3, -2), math2d.V(-1, 0.5)),
		collision.NewAABB(math2d.V(0.25, 0.25), math2d.V(0.75, 0.5)),
		collision.NewAABB(math2d.V(-5, 5), math2d.V(-5, 5)),
	}

	for i, a := range boxes {
		if !a.IsValid() {
			t.Errorf("box %d invalid: %+v", i, a)
		}
		if !a.Contains(a) {
			t.Errorf("box %d does not contain itself", i)
		}
		for j, b := range boxes {
			c := collision.Combine(a, b)
			if !c.Contains(a) || !c.Contains(b) {
				t.Errorf("Combine(%d, %d) = %+v does not contain both", i, j, c)
			}
			// Every side of the combined box touches one of the inputs.
			if c.LowerBound[0] != min(a.LowerBound[0], b.LowerBound[0]) ||
				c.LowerBound[1] != min(a.LowerBound[1], b.LowerBound[1]) ||
				c.UpperBound[0] != max(a.UpperBound[0], b.UpperBound[0]) ||
				c.UpperBound[1] != max(a.UpperBound[1], b.UpperBound[1]) {
				t.Errorf("Combine(%d, %d) = %+v is not tight", i, j, c)
			}
			if a.Combine(b) != c {
				t.Errorf("method and function Combine disagree")
			}
		}
	}

	if boxes[2].Contains(boxes[0]) {
		t.Error("inner box contains outer box")
	}
}

func TestAABBMetrics(t *testing.T) {
	bb := collision.NewAABB(math2d.V(-1, 2), math2d.V(3, 4))
	if bb.Center() != math2d.V(1, 3) {
		t.Errorf("Center = %v", bb.Center())
	}
	if bb.Extents() != math2d.V(2, 1) {
		t.Errorf("Extents = %v", bb.Extents())
	}
	if bb.Perimeter() != 12 {
		t.Errorf("Perimeter = %v", bb.Perimeter())
	}

	shifted := bb.Shift(math2d.V(1, 1))
	if shifted.LowerBound != math2d.V(-2, 1) || shifted.UpperBound != math2d.V(2, 3) {
		t.Errorf("Shift = %+v", shifted)
	}

	grown := bb.Extend(0.5)
	if grown.LowerBound != math2d.V(-1.5, 1.5) || grown.UpperBound != math2d.V(3.5, 4.5) {
		t.Errorf("Extend = %+v", grown)
	}
}

func TestAABBOverlap(t *testing.T) {
	a := collision.NewAABB(math2d.V(0, 0), math2d.V(1, 1))
	tests := []struct {
		name string
		b    collision.AABB
		want bool
	}{
		{"inside", collision.NewAABB(math2d.V(0.2, 0.2), math2d.V(0.3, 0.3)), true},
		{"touching edge", collision.NewAABB(math2d.V(1, 0), math2d.V(2, 1)), true},
		{"apart in x", collision.NewAABB(math2d.V(1.1, 0), math2d.V(2, 1)), false},
		{"apart in y", collision.NewAABB(math2d.V(0, -2), math2d.V(1, -0.1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collision.TestOverlap(a, tt.b); got != tt.want {
				t.Errorf("TestOverlap = %v, want %v", got, tt.want)
			}
			if got := collision.TestOverlap(tt.b, a); got != tt.want {
				t.Errorf("TestOverlap reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAABBRayCast(t *testing.T) {
	bb := collision.NewAABB(math2d.V(-1, -1), math2d.V(1, 1))
	tests := []struct {
		name     string
		input    collision.RayCastInput
		hit      bool
		fraction float64
		normal   math2d.Vec2
	}{
		{"from left", collision.RayCastInput{P1: math2d.V(-3, 0), P2: math2d.V(1, 0), MaxFraction: 1}, true, 0.5, math2d.V(-1, 0)},
		{"from above", collision.RayCastInput{P1: math2d.V(0.5, 5), P2: math2d.V(0.5, -5), MaxFraction: 1}, true, 0.4, math2d.V(0, 1)},
		{"too short", collision.RayCastInput{P1: math2d.V(-3, 0), P2: math2d.V(1, 0), MaxFraction: 0.4}, false, 0, math2d.Zero},
		{"parallel outside", collision.RayCastInput{P1: math2d.V(-3, 2), P2: math2d.V(3, 2), MaxFraction: 1}, false, 0, math2d.Zero},
		{"diagonal miss", collision.RayCastInput{P1: math2d.V(-3, 0), P2: math2d.V(0, 3), MaxFraction: 1}, false, 0, math2d.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, hit := bb.RayCast(tt.input)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if !hit {
				return
			}
			if !mgl64.FloatEqualThreshold(out.Fraction, tt.fraction, 1e-12) {
				t.Errorf("Fraction = %v, want %v", out.Fraction, tt.fraction)
			}
			if out.Normal != tt.normal {
				t.Errorf("Normal = %v, want %v", out.Normal, tt.normal)
			}
		})
	}
}
