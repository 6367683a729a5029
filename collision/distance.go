package collision

import (
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// DistanceProxy is the vertex set plus rounding radius that GJK sees for a
// shape. Polygon proxies share the polygon's vertex array; points and
// segments are held in a small owned buffer so a proxy can be copied by
// value.
type DistanceProxy struct {
	vertices []math2d.Vec2
	buffer   [2]math2d.Vec2
	count    int
	Radius   float64
}

// NewDistanceProxy builds the proxy of one child of a shape.
func NewDistanceProxy(shape Shape, childIndex int) DistanceProxy {
	var p DistanceProxy

	switch s := shape.(type) {
	case *CircleShape:
		p.buffer[0] = s.P
		p.count = 1
		p.Radius = s.Radius

	case *PolygonShape:
		p.vertices = s.Vertices[:s.Count]
		p.count = s.Count
		p.Radius = s.Radius

	case *ChainShape:
		settings.Assert(0 <= childIndex && childIndex < s.GetChildCount(), "NewDistanceProxy", "chain child index out of range")
		p.buffer[0] = s.Vertices[childIndex]
		p.buffer[1] = s.Vertices[childIndex+1]
		p.count = 2
		p.Radius = s.Radius

	case *EdgeShape:
		p.buffer[0] = s.Vertex1
		p.buffer[1] = s.Vertex2
		p.count = 2
		p.Radius = s.Radius
	}

	settings.Assert(p.count > 0, "NewDistanceProxy", "unknown shape")
	return p
}

// NewDistanceProxyFromVertices builds a proxy over an arbitrary convex
// vertex set. The slice is shared, not copied.
func NewDistanceProxyFromVertices(vs []math2d.Vec2, radius float64) DistanceProxy {
	settings.Assert(len(vs) > 0, "NewDistanceProxyFromVertices", "empty vertex set")
	return DistanceProxy{vertices: vs, count: len(vs), Radius: radius}
}

// VertexCount returns 1 for a point, 2 for a segment and N for a polygon.
func (p *DistanceProxy) VertexCount() int {
	return p.count
}

func (p *DistanceProxy) Vertex(index int) math2d.Vec2 {
	settings.Assert(0 <= index && index < p.count, "DistanceProxy.Vertex", "index out of range")
	if p.vertices != nil {
		return p.vertices[index]
	}
	return p.buffer[index]
}

// Support returns the index of the vertex furthest along d.
func (p *DistanceProxy) Support(d math2d.Vec2) int {
	bestIndex := 0
	bestValue := p.Vertex(0).Dot(d)
	for i := 1; i < p.count; i++ {
		value := p.Vertex(i).Dot(d)
		if value > bestValue {
			bestIndex = i
			bestValue = value
		}
	}

	return bestIndex
}

// SimplexCache warm starts Distance. Set Count to zero on first use.
type SimplexCache struct {
	Metric float64 // length or area
	Count  int
	IndexA [3]uint8 // vertices on shape A
	IndexB [3]uint8 // vertices on shape B
}

// DistanceInput is the input of Distance. With UseRadii set the rounding
// radii of the proxies are taken into account.
type DistanceInput struct {
	ProxyA     DistanceProxy
	ProxyB     DistanceProxy
	TransformA math2d.Transform
	TransformB math2d.Transform
	UseRadii   bool
}

// DistanceOutput is the result of Distance.
type DistanceOutput struct {
	PointA     math2d.Vec2 // closest point on shape A
	PointB     math2d.Vec2 // closest point on shape B
	Distance   float64
	Iterations int // number of GJK iterations used
}

type simplexVertex struct {
	wA     math2d.Vec2 // support point in proxy A
	wB     math2d.Vec2 // support point in proxy B
	w      math2d.Vec2 // wB - wA
	a      float64     // barycentric coordinate for closest point
	indexA int
	indexB int
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

func (s *simplex) readCache(cache *SimplexCache, proxyA *DistanceProxy, xfA math2d.Transform, proxyB *DistanceProxy, xfB math2d.Transform) {
	settings.Assert(cache.Count <= 3, "simplex.readCache", "cache count out of range")

	// Copy data from cache.
	s.count = cache.Count
	for i := 0; i < s.count; i++ {
		v := &s.v[i]
		v.indexA = int(cache.IndexA[i])
		v.indexB = int(cache.IndexB[i])
		v.wA = xfA.Apply(proxyA.Vertex(v.indexA))
		v.wB = xfB.Apply(proxyB.Vertex(v.indexB))
		v.w = v.wB.Sub(v.wA)
		v.a = 0.0
	}

	// Flush the simplex if its metric changed substantially.
	if s.count > 1 {
		metric1 := cache.Metric
		metric2 := s.metric()
		if metric2 < 0.5*metric1 || 2.0*metric1 < metric2 || metric2 < settings.Epsilon {
			s.count = 0
		}
	}

	// If the cache is empty or invalid ...
	if s.count == 0 {
		v := &s.v[0]
		v.indexA = 0
		v.indexB = 0
		v.wA = xfA.Apply(proxyA.Vertex(0))
		v.wB = xfB.Apply(proxyB.Vertex(0))
		v.w = v.wB.Sub(v.wA)
		v.a = 1.0
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Metric = s.metric()
	cache.Count = s.count
	for i := 0; i < s.count; i++ {
		cache.IndexA[i] = uint8(s.v[i].indexA)
		cache.IndexB[i] = uint8(s.v[i].indexB)
	}
}

func (s *simplex) searchDirection() math2d.Vec2 {
	switch s.count {
	case 1:
		return math2d.Neg(s.v[0].w)

	case 2:
		e12 := s.v[1].w.Sub(s.v[0].w)
		sgn := math2d.Cross(e12, math2d.Neg(s.v[0].w))
		if sgn > 0.0 {
			// Origin is left of e12.
			return math2d.CrossSV(1.0, e12)
		}
		// Origin is right of e12.
		return math2d.CrossVS(e12, 1.0)
	}

	settings.Assert(false, "simplex.searchDirection", "invalid simplex count")
	return math2d.Zero
}

func (s *simplex) witnessPoints() (pA, pB math2d.Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB

	case 2:
		pA = s.v[0].wA.Mul(s.v[0].a).Add(s.v[1].wA.Mul(s.v[1].a))
		pB = s.v[0].wB.Mul(s.v[0].a).Add(s.v[1].wB.Mul(s.v[1].a))
		return pA, pB

	case 3:
		pA = s.v[0].wA.Mul(s.v[0].a).Add(s.v[1].wA.Mul(s.v[1].a)).Add(s.v[2].wA.Mul(s.v[2].a))
		return pA, pA
	}

	settings.Assert(false, "simplex.witnessPoints", "invalid simplex count")
	return math2d.Zero, math2d.Zero
}

func (s *simplex) metric() float64 {
	switch s.count {
	case 1:
		return 0.0

	case 2:
		return math2d.Distance(s.v[0].w, s.v[1].w)

	case 3:
		return math2d.Cross(s.v[1].w.Sub(s.v[0].w), s.v[2].w.Sub(s.v[0].w))
	}

	settings.Assert(false, "simplex.metric", "invalid simplex count")
	return 0.0
}

// solve2 solves a line segment using barycentric coordinates.
//
//	p = a1 * w1 + a2 * w2
//	a1 + a2 = 1
//
// The vector from the origin to the closest point on the line is
// perpendicular to the line:
//
//	e12 = w2 - w1
//	dot(p, e) = 0
//	a1 * dot(w1, e) + a2 * dot(w2, e) = 0
func (s *simplex) solve2() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	e12 := w2.Sub(w1)

	// w1 region
	d12n2 := -w1.Dot(e12)
	if d12n2 <= 0.0 {
		// a2 <= 0, so we clamp it to 0
		s.v[0].a = 1.0
		s.count = 1
		return
	}

	// w2 region
	d12n1 := w2.Dot(e12)
	if d12n1 <= 0.0 {
		// a1 <= 0, so we clamp it to 0
		s.v[1].a = 1.0
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	// Must be in e12 region.
	inv := 1.0 / (d12n1 + d12n2)
	s.v[0].a = d12n1 * inv
	s.v[1].a = d12n2 * inv
	s.count = 2
}

// solve3 classifies the origin against the triangle. Possible regions:
// points[2], edge points[0]-points[2], edge points[1]-points[2], or the
// triangle interior.
func (s *simplex) solve3() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	w3 := s.v[2].w

	// Edge12
	// [1      1     ][a1] = [1]
	// [w1.e12 w2.e12][a2] = [0]
	// a3 = 0
	e12 := w2.Sub(w1)
	d12n1 := w2.Dot(e12)
	d12n2 := -w1.Dot(e12)

	// Edge13
	// [1      1     ][a1] = [1]
	// [w1.e13 w3.e13][a3] = [0]
	// a2 = 0
	e13 := w3.Sub(w1)
	d13n1 := w3.Dot(e13)
	d13n2 := -w1.Dot(e13)

	// Edge23
	// [1      1     ][a2] = [1]
	// [w2.e23 w3.e23][a3] = [0]
	// a1 = 0
	e23 := w3.Sub(w2)
	d23n1 := w3.Dot(e23)
	d23n2 := -w2.Dot(e23)

	// Triangle123
	n123 := math2d.Cross(e12, e13)

	d123n1 := n123 * math2d.Cross(w2, w3)
	d123n2 := n123 * math2d.Cross(w3, w1)
	d123n3 := n123 * math2d.Cross(w1, w2)

	// w1 region
	if d12n2 <= 0.0 && d13n2 <= 0.0 {
		s.v[0].a = 1.0
		s.count = 1
		return
	}

	// e12
	if d12n1 > 0.0 && d12n2 > 0.0 && d123n3 <= 0.0 {
		inv := 1.0 / (d12n1 + d12n2)
		s.v[0].a = d12n1 * inv
		s.v[1].a = d12n2 * inv
		s.count = 2
		return
	}

	// e13
	if d13n1 > 0.0 && d13n2 > 0.0 && d123n2 <= 0.0 {
		inv := 1.0 / (d13n1 + d13n2)
		s.v[0].a = d13n1 * inv
		s.v[2].a = d13n2 * inv
		s.count = 2
		s.v[1] = s.v[2]
		return
	}

	// w2 region
	if d12n1 <= 0.0 && d23n2 <= 0.0 {
		s.v[1].a = 1.0
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	// w3 region
	if d13n1 <= 0.0 && d23n1 <= 0.0 {
		s.v[2].a = 1.0
		s.count = 1
		s.v[0] = s.v[2]
		return
	}

	// e23
	if d23n1 > 0.0 && d23n2 > 0.0 && d123n1 <= 0.0 {
		inv := 1.0 / (d23n1 + d23n2)
		s.v[1].a = d23n1 * inv
		s.v[2].a = d23n2 * inv
		s.count = 2
		s.v[0] = s.v[2]
		return
	}

	// Must be in triangle123
	inv := 1.0 / (d123n1 + d123n2 + d123n3)
	s.v[0].a = d123n1 * inv
	s.v[1].a = d123n2 * inv
	s.v[2].a = d123n3 * inv
	s.count = 3
}

// Distance computes the closest points between two convex proxies with GJK,
// using Voronoi regions (Christer Ericson) and barycentric coordinates. The
// cache is read on entry to warm start and rewritten on exit. Distance does
// not touch any shared state, so concurrent calls with distinct caches are
// safe.
func Distance(input *DistanceInput, cache *SimplexCache) DistanceOutput {
	proxyA := &input.ProxyA
	proxyB := &input.ProxyB

	xfA := input.TransformA
	xfB := input.TransformB

	var s simplex
	s.readCache(cache, proxyA, xfA, proxyB, xfB)

	// The vertices of the last simplex, used to detect duplicates and
	// prevent cycling.
	var saveA, saveB [3]int
	saveCount := 0

	iter := 0
	for iter < settings.GJKMaxIterations {
		// Copy simplex so we can identify duplicates.
		saveCount = s.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = s.v[i].indexA
			saveB[i] = s.v[i].indexB
		}

		switch s.count {
		case 1:
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		default:
			settings.Assert(false, "Distance", "invalid simplex count")
		}

		// If we have 3 points, then the origin is in the corresponding triangle.
		if s.count == 3 {
			break
		}

		d := s.searchDirection()

		// Ensure the search direction is numerically fit.
		if d.LenSqr() < settings.Epsilon*settings.Epsilon {
			// The origin is probably contained by a line segment or
			// triangle, so the shapes overlap. Zero can't be returned here:
			// it is hard to tell whether the origin is in the CSO or very
			// close to it.
			break
		}

		// Compute a tentative new simplex vertex using support points.
		vertex := &s.v[s.count]
		vertex.indexA = proxyA.Support(xfA.Q.ApplyT(math2d.Neg(d)))
		vertex.wA = xfA.Apply(proxyA.Vertex(vertex.indexA))
		vertex.indexB = proxyB.Support(xfB.Q.ApplyT(d))
		vertex.wB = xfB.Apply(proxyB.Vertex(vertex.indexB))
		vertex.w = vertex.wB.Sub(vertex.wA)

		// Iteration count is equated to the number of support point calls.
		iter++

		// Check for duplicate support points. This is the main
		// termination criteria.
		duplicate := false
		for i := 0; i < saveCount; i++ {
			if vertex.indexA == saveA[i] && vertex.indexB == saveB[i] {
				duplicate = true
				break
			}
		}

		if duplicate {
			break
		}

		// New vertex is ok and needed.
		s.count++
	}

	var output DistanceOutput
	output.PointA, output.PointB = s.witnessPoints()
	output.Distance = math2d.Distance(output.PointA, output.PointB)
	output.Iterations = iter

	s.writeCache(cache)

	if input.UseRadii {
		rA := proxyA.Radius
		rB := proxyB.Radius

		if output.Distance > rA+rB && output.Distance > settings.Epsilon {
			// Shapes are still not overlapped. Move the witness points to
			// the outer surface.
			output.Distance -= rA + rB
			normal := math2d.Unit(output.PointB.Sub(output.PointA))
			output.PointA = output.PointA.Add(normal.Mul(rA))
			output.PointB = output.PointB.Sub(normal.Mul(rB))
		} else {
			// Shapes are overlapped when radii are considered. Move the
			// witness points to the middle.
			p := math2d.Mid(output.PointA, output.PointB)
			output.PointA = p
			output.PointB = p
			output.Distance = 0.0
		}
	}

	return output
}
