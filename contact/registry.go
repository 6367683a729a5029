package contact

import (
	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
)

// evaluateFunc writes the manifold of one child pair. Shapes arrive in
// the order they were registered.
type evaluateFunc func(m *collision.Manifold, shapeA collision.Shape, indexA int, xfA math2d.Transform, shapeB collision.Shape, indexB int, xfB math2d.Transform)

type register struct {
	evaluate evaluateFunc
	primary  bool
}

var registers = newRegisters()

func newRegisters() (r [collision.ShapeTypeCount][collision.ShapeTypeCount]register) {
	addType := func(fn evaluateFunc, type1, type2 collision.ShapeType) {
		r[type1][type2] = register{evaluate: fn, primary: true}
		if type1 != type2 {
			r[type2][type1] = register{evaluate: fn, primary: false}
		}
	}

	addType(evaluateCircles, collision.ShapeCircle, collision.ShapeCircle)
	addType(evaluatePolygonAndCircle, collision.ShapePolygon, collision.ShapeCircle)
	addType(evaluatePolygons, collision.ShapePolygon, collision.ShapePolygon)
	addType(evaluateEdgeAndCircle, collision.ShapeEdge, collision.ShapeCircle)
	addType(evaluateEdgeAndPolygon, collision.ShapeEdge, collision.ShapePolygon)
	addType(evaluateChainAndCircle, collision.ShapeChain, collision.ShapeCircle)
	addType(evaluateChainAndPolygon, collision.ShapeChain, collision.ShapePolygon)
	return r
}

// Supported reports whether a manifold generator exists for the pair, in
// either order.
func Supported(typeA, typeB collision.ShapeType) bool {
	if typeA >= collision.ShapeTypeCount || typeB >= collision.ShapeTypeCount {
		return false
	}
	return registers[typeA][typeB].evaluate != nil
}

func evaluateCircles(m *collision.Manifold, a collision.Shape, _ int, xfA math2d.Transform, b collision.Shape, _ int, xfB math2d.Transform) {
	collision.CollideCircles(m, a.(*collision.CircleShape), xfA, b.(*collision.CircleShape), xfB)
}

func evaluatePolygonAndCircle(m *collision.Manifold, a collision.Shape, _ int, xfA math2d.Transform, b collision.Shape, _ int, xfB math2d.Transform) {
	collision.CollidePolygonAndCircle(m, a.(*collision.PolygonShape), xfA, b.(*collision.CircleShape), xfB)
}

func evaluatePolygons(m *collision.Manifold, a collision.Shape, _ int, xfA math2d.Transform, b collision.Shape, _ int, xfB math2d.Transform) {
	collision.CollidePolygons(m, a.(*collision.PolygonShape), xfA, b.(*collision.PolygonShape), xfB)
}

func evaluateEdgeAndCircle(m *collision.Manifold, a collision.Shape, _ int, xfA math2d.Transform, b collision.Shape, _ int, xfB math2d.Transform) {
	collision.CollideEdgeAndCircle(m, a.(*collision.EdgeShape), xfA, b.(*collision.CircleShape), xfB)
}

func evaluateEdgeAndPolygon(m *collision.Manifold, a collision.Shape, _ int, xfA math2d.Transform, b collision.Shape, _ int, xfB math2d.Transform) {
	collision.CollideEdgeAndPolygon(m, a.(*collision.EdgeShape), xfA, b.(*collision.PolygonShape), xfB)
}

func evaluateChainAndCircle(m *collision.Manifold, a collision.Shape, indexA int, xfA math2d.Transform, b collision.Shape, _ int, xfB math2d.Transform) {
	edge := a.(*collision.ChainShape).ChildEdge(indexA)
	collision.CollideEdgeAndCircle(m, &edge, xfA, b.(*collision.CircleShape), xfB)
}

func evaluateChainAndPolygon(m *collision.Manifold, a collision.Shape, indexA int, xfA math2d.Transform, b collision.Shape, _ int, xfB math2d.Transform) {
	edge := a.(*collision.ChainShape).ChildEdge(indexA)
	collision.CollideEdgeAndPolygon(m, &edge, xfA, b.(*collision.PolygonShape), xfB)
}
