// Package settings holds the global tuning constants of the collision core.
// Units are meters-kilograms-seconds (MKS).
package settings

import "math"

const MaxFloat = math.MaxFloat64

// Epsilon is the float64 machine epsilon.
const Epsilon = 2.220446049250313e-16

const Pi = math.Pi

// Collision

// MaxManifoldPoints is the maximum number of contact points between two
// convex shapes. Do not change this value.
const MaxManifoldPoints = 2

// MaxPolygonVertices is the maximum number of vertices on a convex polygon.
const MaxPolygonVertices = 8

// AABBExtension fattens AABBs in the dynamic tree. This allows proxies to
// move by a small amount without triggering a tree adjustment. In meters.
const AABBExtension = 0.1

// AABBMultiplier fattens AABBs in the dynamic tree along the predicted
// displacement. Dimensionless.
const AABBMultiplier = 2.0

// LinearSlop is a small length used as a collision and constraint tolerance.
// It is numerically significant but visually insignificant.
const LinearSlop = 0.005

// AngularSlop is a small angle used as a collision and constraint tolerance.
const AngularSlop = 2.0 / 180.0 * Pi

// PolygonRadius is the skin of polygon and edge shapes. Making it smaller
// leaves polygons an insufficient buffer for continuous collision; making it
// larger may create artifacts for vertex collision.
const PolygonRadius = 2.0 * LinearSlop

// Reference face selection uses hysteresis to stop the contact normal from
// flip-flopping between frames: the second candidate wins only if its
// separation exceeds RelativeTolerance*first + AbsoluteTolerance.
const (
	RelativeTolerance = 0.98
	AbsoluteTolerance = 0.001
)

// Iteration caps. Tuned empirically; convergence behavior depends on them.
const (
	GJKMaxIterations     = 20
	TOIMaxIterations     = 20
	TOIMaxRootIterations = 50
)
