package collision

import (
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// TestOverlapShapes reports whether child indexA of shapeA and child indexB
// of shapeB overlap, radii included.
func TestOverlapShapes(shapeA Shape, indexA int, shapeB Shape, indexB int, xfA, xfB math2d.Transform) bool {
	input := DistanceInput{
		ProxyA:     NewDistanceProxy(shapeA, indexA),
		ProxyB:     NewDistanceProxy(shapeB, indexB),
		TransformA: xfA,
		TransformB: xfB,
		UseRadii:   true,
	}

	var cache SimplexCache
	output := Distance(&input, &cache)

	return output.Distance < 10.0*settings.Epsilon
}
