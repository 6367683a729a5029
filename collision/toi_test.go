package collision_test

import (
	"testing"
	"time"

	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
	"github.com/go-gl/mathgl/mgl64"
)

func linearSweep(from, to math2d.Vec2) math2d.Sweep {
	return math2d.Sweep{C0: from, C: to}
}

func toiInput(a collision.Shape, sweepA math2d.Sweep, b collision.Shape, sweepB math2d.Sweep, tMax float64) collision.TOIInput {
	return collision.TOIInput{
		ProxyA: collision.NewDistanceProxy(a, 0),
		ProxyB: collision.NewDistanceProxy(b, 0),
		SweepA: sweepA,
		SweepB: sweepB,
		TMax:   tMax,
	}
}

// separationAt is the GJK distance between the proxy cores at fraction t.
func separationAt(input *collision.TOIInput, t float64) float64 {
	din := collision.DistanceInput{
		ProxyA:     input.ProxyA,
		ProxyB:     input.ProxyB,
		TransformA: input.SweepA.Transform(t),
		TransformB: input.SweepB.Transform(t),
	}
	var cache collision.SimplexCache
	return collision.Distance(&din, &cache).Distance
}

func TestTimeOfImpactCircles(t *testing.T) {
	a := collision.NewCircle(math2d.Zero, 0.5)
	b := collision.NewCircle(math2d.Zero, 0.5)
	rest := linearSweep(math2d.Zero, math2d.Zero)

	tests := []struct {
		name  string
		to    math2d.Vec2
		tMax  float64
		state collision.TOIState
	}{
		{"closing", math2d.V(0.9, 0), 1, collision.TOITouching},
		{"short of contact", math2d.V(2, 0), 1, collision.TOISeparated},
		{"stopped early", math2d.V(0.9, 0), 0.5, collision.TOISeparated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := toiInput(a, rest, b, linearSweep(math2d.V(10, 0), tt.to), tt.tMax)
			out := collision.TimeOfImpact(&input)
			if out.State != tt.state {
				t.Fatalf("State = %v, want %v", out.State, tt.state)
			}

			switch out.State {
			case collision.TOISeparated:
				if out.T != tt.tMax {
					t.Errorf("T = %v, want %v", out.T, tt.tMax)
				}
			case collision.TOITouching:
				if out.T <= 0 || out.T >= 1 {
					t.Fatalf("T = %v, want in (0, 1)", out.T)
				}
				// Contact happens when the centers are 0.985 apart.
				want := (10 - 0.985) / 9.1
				if !mgl64.FloatEqualThreshold(out.T, want, 0.001) {
					t.Errorf("T = %v, want about %v", out.T, want)
				}
			}
		})
	}
}

func TestTimeOfImpactOverlapped(t *testing.T) {
	a := collision.NewCircle(math2d.Zero, 0.5)
	b := collision.NewCircle(math2d.Zero, 0.5)
	input := toiInput(a, linearSweep(math2d.Zero, math2d.Zero), b, linearSweep(math2d.Zero, math2d.V(5, 0)), 1)

	out := collision.TimeOfImpact(&input)
	if out.State != collision.TOIOverlapped || out.T != 0 {
		t.Fatalf("got %v at %v, want overlapped at 0", out.State, out.T)
	}
}

func TestTimeOfImpactBoxes(t *testing.T) {
	wall := collision.NewBox(0.1, 2)
	box := collision.NewBox(0.25, 0.25)

	input := toiInput(
		wall, linearSweep(math2d.Zero, math2d.Zero),
		box, linearSweep(math2d.V(-5, 0), math2d.V(5, 0)),
		1,
	)

	start := time.Now()
	out := collision.TimeOfImpact(&input)
	elapsed := time.Since(start)

	if out.State != collision.TOITouching {
		t.Fatalf("State = %v, want touching", out.State)
	}
	if out.T <= 0.46 || out.T >= 0.4647 {
		t.Fatalf("T = %v, want in (0.46, 0.4647)", out.T)
	}

	var p collision.Profile
	p.AddTOI(out, elapsed)
	if p.TOICalls != 1 || p.TOIIters != out.Iterations || p.TOIRootIters != out.RootIterations || p.TOIMaxTime != elapsed {
		t.Errorf("profile = %+v", p)
	}
	if out.Iterations > settings.TOIMaxIterations || out.MaxRootIterations > settings.TOIMaxRootIterations {
		t.Errorf("iteration caps exceeded: %+v", out)
	}
}

func TestTimeOfImpactRotating(t *testing.T) {
	// A long thin bar swinging down from vertical until its tip meets a box.
	bar := collision.NewBox(2, 0.05)
	box := collision.NewBox(0.5, 0.5)

	sweepBar := math2d.Sweep{A0: settings.Pi / 2, A: 0}
	input := toiInput(bar, sweepBar, box, linearSweep(math2d.V(2.5, 0), math2d.V(2.5, 0)), 1)

	out := collision.TimeOfImpact(&input)
	if out.State != collision.TOITouching {
		t.Fatalf("State = %v, want touching", out.State)
	}
	// The tip reaches the box face at a bar angle of about 0.1 radians.
	if out.T < 0.92 || out.T > 0.95 {
		t.Errorf("T = %v, want about 0.936", out.T)
	}

	target := max(settings.LinearSlop, bar.Radius+box.Radius-3*settings.LinearSlop)
	tolerance := 0.25 * settings.LinearSlop
	if d := separationAt(&input, out.T); d < target-tolerance {
		t.Errorf("separation at T = %v, want at least %v", d, target-tolerance)
	}
}

func TestTimeOfImpactConservative(t *testing.T) {
	a := collision.NewCircle(math2d.Zero, 0.5)
	b := collision.NewCircle(math2d.Zero, 0.5)
	input := toiInput(a, linearSweep(math2d.Zero, math2d.Zero), b, linearSweep(math2d.V(10, 0), math2d.V(0.9, 0)), 1)

	out := collision.TimeOfImpact(&input)
	if out.State != collision.TOITouching {
		t.Fatalf("State = %v, want touching", out.State)
	}

	target := 1.0 - 3*settings.LinearSlop
	tolerance := 0.25 * settings.LinearSlop

	if d := separationAt(&input, out.T); d < target-tolerance {
		t.Errorf("shapes already penetrating at T: separation %v", d)
	}
	for _, delta := range []float64{1e-4, 1e-3, 5e-3} {
		if d := separationAt(&input, out.T+delta); d > target+tolerance {
			t.Errorf("separation at T+%v = %v, TOI is late", delta, d)
		}
	}
}

func TestTimeOfImpactIterationCap(t *testing.T) {
	circle := collision.NewCircle(math2d.Zero, 0.5)
	bar := collision.NewBox(2, 0.05)
	box := collision.NewBox(0.5, 0.5)
	still := linearSweep(math2d.V(2.5, 0), math2d.V(2.5, 0))

	tests := []struct {
		name  string
		input collision.TOIInput
	}{
		{"closing circles", toiInput(circle, linearSweep(math2d.Zero, math2d.Zero), circle, linearSweep(math2d.V(10, 0), math2d.V(0.9, 0)), 1)},
		{"swinging bar", toiInput(bar, math2d.Sweep{A0: settings.Pi / 2, A: 0}, box, still, 1)},
		// Several turns, ending level and overlapping the box.
		{"spinning bar", toiInput(bar, math2d.Sweep{A0: settings.Pi / 2, A: 4 * settings.Pi}, box, linearSweep(math2d.V(1.9, 0), math2d.V(1.9, 0)), 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := collision.TimeOfImpact(&tt.input)
			if full.State != collision.TOITouching && full.State != collision.TOIFailed {
				t.Fatalf("uncapped State = %v", full.State)
			}

			capped := tt.input
			capped.MaxIterations = 1
			out := collision.TimeOfImpact(&capped)
			if out.State != collision.TOIFailed || out.Iterations != 1 {
				t.Fatalf("capped run = %+v, want failed after 1 iteration", out)
			}

			// A failed run stops early, never late.
			if out.T < 0 || out.T > full.T {
				t.Errorf("T = %v, uncapped T = %v", out.T, full.T)
			}
			totalRadius := tt.input.ProxyA.Radius + tt.input.ProxyB.Radius
			target := max(settings.LinearSlop, totalRadius-3*settings.LinearSlop)
			tolerance := 0.25 * settings.LinearSlop
			if d := separationAt(&tt.input, out.T); d < target-tolerance {
				t.Errorf("separation at T = %v, want at least %v", d, target-tolerance)
			}
		})
	}
}

func TestTOIStateString(t *testing.T) {
	want := map[collision.TOIState]string{
		collision.TOIUnknown:    "unknown",
		collision.TOIFailed:     "failed",
		collision.TOIOverlapped: "overlapped",
		collision.TOITouching:   "touching",
		collision.TOISeparated:  "separated",
	}
	for s, name := range want {
		if s.String() != name {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), name)
		}
	}
}
