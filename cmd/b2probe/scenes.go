package main

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/ByteArena/box2d-collision/broadphase"
	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/contact"
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/charmbracelet/log"
)

type sceneFunc func(logger *log.Logger, opts options) error

var scenes = map[string]sceneFunc{
	"boxes": boxesScene,
	"toi":   toiScene,
	"tree":  treeScene,
}

func sceneNames() []string {
	names := make([]string, 0, len(scenes))
	for name := range scenes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomShape returns a circle, a box or a random convex polygon.
func randomShape(rng *rand.Rand) (collision.Shape, error) {
	switch rng.IntN(3) {
	case 0:
		return collision.NewCircle(math2d.Zero, 0.25+rng.Float64()*0.5), nil
	case 1:
		return collision.NewBox(0.2+rng.Float64()*0.6, 0.2+rng.Float64()*0.6), nil
	}
	n := 3 + rng.IntN(6)
	vs := make([]math2d.Vec2, n)
	for i := range vs {
		angle := 2 * math.Pi * rng.Float64()
		r := 0.3 + rng.Float64()*0.5
		vs[i] = math2d.V(r*math.Cos(angle), r*math.Sin(angle))
	}
	return collision.NewPolygon(vs)
}

// touchLogger counts listener events for the boxes scene.
type touchLogger struct {
	logger            *log.Logger
	begins, ends, pre int
}

func (t *touchLogger) BeginContact(c *contact.Contact) {
	t.begins++
	a, b := c.Colliders()
	t.logger.Debug("begin", "a", a.UserData, "b", b.UserData, "pair", c.ShapeA().GetType().String()+"/"+c.ShapeB().GetType().String())
}

func (t *touchLogger) EndContact(c *contact.Contact) {
	t.ends++
	a, b := c.Colliders()
	t.logger.Debug("end", "a", a.UserData, "b", b.UserData)
}

func (t *touchLogger) PreSolve(c *contact.Contact, _ collision.Manifold) {
	t.pre++
	if t.logger.GetLevel() > log.DebugLevel {
		return
	}
	oldStates, newStates := c.PointStates()
	m := c.Manifold()
	for i := 0; i < m.PointCount; i++ {
		t.logger.Debug("point", "type", m.Type, "id", m.Points[i].ID, "key", m.Points[i].ID.Key(), "old", oldStates[i], "new", newStates[i])
	}
}

// boxesScene drops random shapes into a loop of walls and jitters them for
// a few steps, keeping contacts with a contact.Manager.
func boxesScene(logger *log.Logger, opts options) error {
	const steps = 8

	rng := newRand(opts.Seed)
	events := &touchLogger{logger: logger}
	mgr := contact.NewManager(broadphase.NewWithConfig(opts.Tree), events)

	half := math.Max(4, math.Sqrt(float64(opts.Bodies))*1.2)
	walls, err := collision.NewLoop([]math2d.Vec2{
		math2d.V(-half, -half), math2d.V(half, -half), math2d.V(half, half), math2d.V(-half, half),
	})
	if err != nil {
		return err
	}
	mgr.AddCollider(walls, math2d.Identity, false).UserData = "walls"

	colliders := make([]*contact.Collider, 0, opts.Bodies)
	for i := 0; i < opts.Bodies; i++ {
		shape, err := randomShape(rng)
		if err != nil {
			return err
		}
		xf := math2d.NewTransform(math2d.V((rng.Float64()*2-1)*half, (rng.Float64()*2-1)*half), rng.Float64()*2*math.Pi)
		c := mgr.AddCollider(shape, xf, i%10 == 9)
		c.UserData = i
		colliders = append(colliders, c)
	}

	var profile collision.Profile
	for step := 0; step < steps; step++ {
		mgr.FindNewContacts()
		mgr.Collide()

		touching, points, sensors := 0, 0, 0
		for _, c := range mgr.Contacts() {
			if c.IsSensor() {
				if c.IsTouching() {
					sensors++
				}
				continue
			}
			if c.IsTouching() {
				touching++
				points += c.Manifold().PointCount
				continue
			}

			// Close but apart: measure the gap.
			a, b := c.Colliders()
			input := collision.DistanceInput{
				ProxyA:     collision.NewDistanceProxy(c.ShapeA(), c.ChildIndexA()),
				ProxyB:     collision.NewDistanceProxy(c.ShapeB(), c.ChildIndexB()),
				TransformA: a.Transform(),
				TransformB: b.Transform(),
				UseRadii:   true,
			}
			var cache collision.SimplexCache
			profile.AddDistance(collision.Distance(&input, &cache))
		}

		bp := mgr.BroadPhase()
		logger.Info("step",
			"step", step,
			"contacts", mgr.ContactCount(),
			"touching", touching,
			"points", points,
			"sensors", sensors,
			"begin", events.begins,
			"end", events.ends,
			"height", bp.TreeHeight(),
			"quality", bp.TreeQuality(),
		)

		for _, c := range colliders {
			xf := c.Transform()
			xf.P = xf.P.Add(math2d.V(rng.Float64()*0.4-0.2, rng.Float64()*0.4-0.2))
			xf.Q = math2d.NewRot(xf.Q.Angle() + rng.Float64()*0.2 - 0.1)
			mgr.MoveCollider(c, xf)
		}
	}

	logger.Info("profile", "gjk", profile.GJKCalls, "iters", profile.GJKIters, "max", profile.GJKMaxIters, "presolve", events.pre)
	return nil
}

// toiScene fires fast bodies at a thin wall and reports where continuous
// collision stops them.
func toiScene(logger *log.Logger, opts options) error {
	rng := newRand(opts.Seed)

	wall := collision.NewBox(0.05, 5)
	wallSweep := math2d.Sweep{}

	var profile collision.Profile
	counts := map[collision.TOIState]int{}
	for i := 0; i < opts.Bodies; i++ {
		shape, err := randomShape(rng)
		if err != nil {
			return err
		}
		c, err := contact.New(wall, 0, shape, 0)
		if err != nil {
			return err
		}

		from := math2d.V(-10-rng.Float64()*5, rng.Float64()*8-4)
		to := math2d.V(10+rng.Float64()*5, rng.Float64()*8-4)
		bullet := math2d.Sweep{C0: from, C: to, A0: 0, A: rng.Float64() * 4 * math.Pi}

		sweepA, sweepB := wallSweep, bullet
		if c.Reversed() {
			sweepA, sweepB = sweepB, sweepA
		}
		out := c.TimeOfImpact(sweepA, sweepB, 1, &profile)
		counts[out.State]++

		hit := bullet.Transform(out.T).P
		logger.Debug("bullet", "i", i, "type", shape.GetType(), "state", out.State, "t", out.T, "iters", out.Iterations, "x", hit[0], "y", hit[1])
		if out.State == collision.TOIFailed {
			logger.Warn("toi did not converge", "i", i, "t", out.T, "iters", out.Iterations)
		}
	}

	logger.Info("toi",
		"touching", counts[collision.TOITouching],
		"separated", counts[collision.TOISeparated],
		"overlapped", counts[collision.TOIOverlapped],
		"failed", counts[collision.TOIFailed],
	)
	logger.Info("profile",
		"calls", profile.TOICalls,
		"iters", profile.TOIIters,
		"max", profile.TOIMaxIters,
		"root", profile.TOIRootIters,
		"rootmax", profile.TOIMaxRootIters,
		"time", profile.TOITime,
		"maxtime", profile.TOIMaxTime,
	)
	return nil
}

// treeScene stresses the dynamic tree directly and reports its shape before
// and after a bottom-up rebuild.
func treeScene(logger *log.Logger, opts options) error {
	rng := newRand(opts.Seed)
	tree := broadphase.NewDynamicTreeWithConfig(opts.Tree)

	const worldExtent = 100.0
	randomBox := func() collision.AABB {
		p := math2d.V((rng.Float64()*2-1)*worldExtent, (rng.Float64()*2-1)*worldExtent)
		return collision.NewAABB(p, p.Add(math2d.V(0.5+rng.Float64()*2, 0.5+rng.Float64()*2)))
	}

	ids := make([]int, 0, opts.Bodies)
	for i := 0; i < opts.Bodies; i++ {
		ids = append(ids, tree.CreateProxy(randomBox(), i))
	}

	reinserted := 0
	for _, id := range ids {
		d := math2d.V(rng.Float64()*2-1, rng.Float64()*2-1)
		aabb := tree.FatAABB(id).Shift(d.Mul(-1)).Extend(-opts.Tree.AABBExtension)
		if tree.MoveProxy(id, aabb, d) {
			reinserted++
		}
	}
	if err := tree.Validate(); err != nil {
		return err
	}

	logTree := func(msg string) {
		logger.Info(msg, "proxies", tree.ProxyCount(), "height", tree.Height(), "balance", tree.MaxBalance(), "area", tree.AreaRatio())
	}
	logTree("incremental")

	hits := 0
	tree.Query(func(int) bool {
		hits++
		return true
	}, collision.NewAABB(math2d.V(-10, -10), math2d.V(10, 10)))

	casts := 0
	tree.RayCast(func(input collision.RayCastInput, id int) float64 {
		casts++
		return -1
	}, collision.RayCastInput{P1: math2d.V(-worldExtent, 0), P2: math2d.V(worldExtent, 0), MaxFraction: 1})
	logger.Info("queries", "moved", reinserted, "box", hits, "ray", casts)

	tree.RebuildBottomUp()
	if err := tree.Validate(); err != nil {
		return err
	}
	logTree("rebuilt")
	return nil
}
