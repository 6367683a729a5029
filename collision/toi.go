package collision

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// TOIInput holds the parameters of TimeOfImpact. The sweep interval is
// [0, TMax].
type TOIInput struct {
	ProxyA DistanceProxy
	ProxyB DistanceProxy
	SweepA math2d.Sweep
	SweepB math2d.Sweep
	TMax   float64

	// MaxIterations caps the outer loop. Zero means
	// settings.TOIMaxIterations.
	MaxIterations int
}

// TOIState is the outcome of TimeOfImpact.
type TOIState uint8

const (
	TOIUnknown TOIState = iota
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

func (s TOIState) String() string {
	switch s {
	case TOIUnknown:
		return "unknown"
	case TOIFailed:
		return "failed"
	case TOIOverlapped:
		return "overlapped"
	case TOITouching:
		return "touching"
	case TOISeparated:
		return "separated"
	}
	return fmt.Sprintf("TOIState(%d)", uint8(s))
}

// TOIOutput is the result of TimeOfImpact. On TOITouching and TOIFailed
// the caller must stop motion at T; TOIFailed never means "no impact".
type TOIOutput struct {
	State TOIState
	T     float64

	Iterations        int // outer loop iterations
	RootIterations    int // root finder iterations, summed
	MaxRootIterations int // longest single root find
}

type separationType uint8

const (
	separationPoints separationType = iota
	separationFaceA
	separationFaceB
)

// separationFunction evaluates the signed separation of the two proxies
// along an axis fixed in one of the bodies, at any sweep fraction.
type separationFunction struct {
	proxyA, proxyB *DistanceProxy
	sweepA, sweepB math2d.Sweep
	typ            separationType
	localPoint     math2d.Vec2
	axis           math2d.Vec2
}

// initialize builds the axis from a GJK cache of one or two vertex pairs and
// returns the separation at t1.
func (f *separationFunction) initialize(cache *SimplexCache, proxyA *DistanceProxy, sweepA math2d.Sweep, proxyB *DistanceProxy, sweepB math2d.Sweep, t1 float64) float64 {
	f.proxyA = proxyA
	f.proxyB = proxyB
	count := cache.Count
	settings.Assert(0 < count && count < 3, "separationFunction.initialize", "cache must hold 1 or 2 vertices")

	f.sweepA = sweepA
	f.sweepB = sweepB

	xfA := f.sweepA.Transform(t1)
	xfB := f.sweepB.Transform(t1)

	if count == 1 {
		f.typ = separationPoints
		pointA := xfA.Apply(proxyA.Vertex(int(cache.IndexA[0])))
		pointB := xfB.Apply(proxyB.Vertex(int(cache.IndexB[0])))
		var s float64
		f.axis, s = math2d.Normalize(pointB.Sub(pointA))
		return s
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		// Two points on B and one on A.
		f.typ = separationFaceB
		localPointB1 := proxyB.Vertex(int(cache.IndexB[0]))
		localPointB2 := proxyB.Vertex(int(cache.IndexB[1]))

		f.axis = math2d.Unit(math2d.CrossVS(localPointB2.Sub(localPointB1), 1.0))
		normal := xfB.Q.Apply(f.axis)

		f.localPoint = math2d.Mid(localPointB1, localPointB2)
		pointB := xfB.Apply(f.localPoint)

		pointA := xfA.Apply(proxyA.Vertex(int(cache.IndexA[0])))

		s := pointA.Sub(pointB).Dot(normal)
		if s < 0.0 {
			f.axis = math2d.Neg(f.axis)
			s = -s
		}

		return s
	}

	// Two points on A and one or two points on B.
	f.typ = separationFaceA
	localPointA1 := proxyA.Vertex(int(cache.IndexA[0]))
	localPointA2 := proxyA.Vertex(int(cache.IndexA[1]))

	f.axis = math2d.Unit(math2d.CrossVS(localPointA2.Sub(localPointA1), 1.0))
	normal := xfA.Q.Apply(f.axis)

	f.localPoint = math2d.Mid(localPointA1, localPointA2)
	pointA := xfA.Apply(f.localPoint)

	pointB := xfB.Apply(proxyB.Vertex(int(cache.IndexB[0])))

	s := pointB.Sub(pointA).Dot(normal)
	if s < 0.0 {
		f.axis = math2d.Neg(f.axis)
		s = -s
	}

	return s
}

// findMinSeparation returns the deepest points at t and their separation.
// An index of -1 means the side is represented by the reference face.
func (f *separationFunction) findMinSeparation(t float64) (indexA, indexB int, separation float64) {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.typ {
	case separationPoints:
		axisA := xfA.Q.ApplyT(f.axis)
		axisB := xfB.Q.ApplyT(math2d.Neg(f.axis))

		indexA = f.proxyA.Support(axisA)
		indexB = f.proxyB.Support(axisB)

		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))

		return indexA, indexB, pointB.Sub(pointA).Dot(f.axis)

	case separationFaceA:
		normal := xfA.Q.Apply(f.axis)
		pointA := xfA.Apply(f.localPoint)

		axisB := xfB.Q.ApplyT(math2d.Neg(normal))

		indexB = f.proxyB.Support(axisB)
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))

		return -1, indexB, pointB.Sub(pointA).Dot(normal)

	case separationFaceB:
		normal := xfB.Q.Apply(f.axis)
		pointB := xfB.Apply(f.localPoint)

		axisA := xfA.Q.ApplyT(math2d.Neg(normal))

		indexA = f.proxyA.Support(axisA)
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))

		return indexA, -1, pointA.Sub(pointB).Dot(normal)
	}

	settings.Assert(false, "separationFunction.findMinSeparation", "unknown separation type")
	return -1, -1, 0.0
}

// evaluate returns the separation of the given witness points at t.
func (f *separationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.typ {
	case separationPoints:
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(f.axis)

	case separationFaceA:
		normal := xfA.Q.Apply(f.axis)
		pointA := xfA.Apply(f.localPoint)
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(normal)

	case separationFaceB:
		normal := xfB.Q.Apply(f.axis)
		pointB := xfB.Apply(f.localPoint)
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		return pointA.Sub(pointB).Dot(normal)
	}

	settings.Assert(false, "separationFunction.evaluate", "unknown separation type")
	return 0.0
}

// TimeOfImpact computes an upper bound on the time before two shapes
// penetrate, as a fraction in [0, TMax]. It uses conservative advancement
// along a swept separating axis, seeking the largest time at which
// separation is maintained, and may miss intermediate non-tunneling
// contact. Use Distance to compute the contact point and normal at the
// returned time.
func TimeOfImpact(input *TOIInput) TOIOutput {
	output := TOIOutput{State: TOIUnknown, T: input.TMax}

	proxyA := &input.ProxyA
	proxyB := &input.ProxyB

	sweepA := input.SweepA
	sweepB := input.SweepB

	// Large rotations can make the root finder fail, so normalize the sweep
	// angles.
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.Radius + proxyB.Radius
	target := math.Max(settings.LinearSlop, totalRadius-3.0*settings.LinearSlop)
	tolerance := 0.25 * settings.LinearSlop
	settings.Assert(target > tolerance, "TimeOfImpact", "target below tolerance")

	maxIterations := input.MaxIterations
	if maxIterations <= 0 {
		maxIterations = settings.TOIMaxIterations
	}

	t1 := 0.0
	iter := 0

	var cache SimplexCache
	distanceInput := DistanceInput{
		ProxyA:   input.ProxyA,
		ProxyB:   input.ProxyB,
		UseRadii: false,
	}

	// The outer loop progressively attempts to compute new separating axes.
	// It terminates when an axis is repeated (no progress is made).
	for {
		// Get the distance between shapes. The result also provides a
		// separating axis.
		distanceInput.TransformA = sweepA.Transform(t1)
		distanceInput.TransformB = sweepB.Transform(t1)
		distanceOutput := Distance(&distanceInput, &cache)

		// If the shapes are overlapped, give up on continuous collision.
		if distanceOutput.Distance <= 0.0 {
			output.State = TOIOverlapped
			output.T = 0.0
			break
		}

		if distanceOutput.Distance < target+tolerance {
			output.State = TOITouching
			output.T = t1
			break
		}

		var fcn separationFunction
		fcn.initialize(&cache, proxyA, sweepA, proxyB, sweepB, t1)

		// Compute the TOI on the separating axis by successively resolving
		// the deepest point. This loop is bounded by the number of
		// vertices.
		done := false
		t2 := tMax
		for pushBackIter := 0; pushBackIter < settings.MaxPolygonVertices; pushBackIter++ {
			// Find the deepest point at t2.
			indexA, indexB, s2 := fcn.findMinSeparation(t2)

			// Is the final configuration separated?
			if s2 > target+tolerance {
				output.State = TOISeparated
				output.T = tMax
				done = true
				break
			}

			// Has the separation reached tolerance?
			if s2 > target-tolerance {
				// Advance the sweeps
				t1 = t2
				break
			}

			// Compute the initial separation of the witness points.
			s1 := fcn.evaluate(indexA, indexB, t1)

			// Check for initial overlap. This might happen if the root
			// finder runs out of iterations.
			if s1 < target-tolerance {
				output.State = TOIFailed
				output.T = t1
				done = true
				break
			}

			// Check for touching. t1 holds the TOI (could be 0.0).
			if s1 <= target+tolerance {
				output.State = TOITouching
				output.T = t1
				done = true
				break
			}

			// Compute 1D root of: f(x) - target = 0
			rootIterCount := 0
			a1, a2 := t1, t2

			for rootIterCount < settings.TOIMaxRootIterations {
				// Use a mix of the secant rule and bisection.
				var t float64
				if rootIterCount&1 != 0 {
					// Secant rule to improve convergence.
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					// Bisection to guarantee progress.
					t = 0.5 * (a1 + a2)
				}

				rootIterCount++

				s := fcn.evaluate(indexA, indexB, t)

				if math.Abs(s-target) < tolerance {
					// t2 holds a tentative value for t1
					t2 = t
					break
				}

				// Ensure we continue to bracket the root.
				if s > target {
					a1 = t
					s1 = s
				} else {
					a2 = t
					s2 = s
				}
			}

			output.RootIterations += rootIterCount
			output.MaxRootIterations = max(output.MaxRootIterations, rootIterCount)
		}

		iter++

		if done {
			break
		}

		if iter == maxIterations {
			// Root finder got stuck. Semi-victory.
			output.State = TOIFailed
			output.T = t1
			break
		}
	}

	output.Iterations = iter
	return output
}
