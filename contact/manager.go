package contact

import (
	"slices"

	"github.com/ByteArena/box2d-collision/broadphase"
	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
)

// Collider places a shape in a Manager. Each child of the shape owns one
// broad-phase proxy. Children of the same collider never collide with each
// other.
type Collider struct {
	// UserData is not used by the manager.
	UserData any

	shape   collision.Shape
	xf      math2d.Transform
	sensor  bool
	proxies []childProxy
}

type childProxy struct {
	collider *Collider
	child    int
	proxyID  int
}

func (c *Collider) Shape() collision.Shape { return c.shape }

func (c *Collider) Transform() math2d.Transform { return c.xf }

func (c *Collider) IsSensor() bool { return c.sensor }

// ProxyID returns the broad-phase proxy of a child.
func (c *Collider) ProxyID(child int) int { return c.proxies[child].proxyID }

type pairKey struct {
	proxyIDA, proxyIDB int
}

func makePairKey(a, b int) pairKey {
	return pairKey{min(a, b), max(a, b)}
}

// Manager keeps the contacts between colliders in step with a broad
// phase. A step is MoveCollider for every collider that moved, then
// FindNewContacts, then Collide.
type Manager struct {
	broadPhase *broadphase.BroadPhase
	listener   Listener

	contacts []*Contact
	index    map[pairKey]*Contact
}

// NewManager returns a manager over bp. listener may be nil.
func NewManager(bp *broadphase.BroadPhase, listener Listener) *Manager {
	return &Manager{
		broadPhase: bp,
		listener:   listener,
		index:      make(map[pairKey]*Contact),
	}
}

func (m *Manager) BroadPhase() *broadphase.BroadPhase { return m.broadPhase }

// Contacts returns the live contacts in creation order. The slice is
// reused by later calls.
func (m *Manager) Contacts() []*Contact { return m.contacts }

func (m *Manager) ContactCount() int { return len(m.contacts) }

// AddCollider creates proxies for every child of shape placed with xf.
// Contacts appear on the next FindNewContacts.
func (m *Manager) AddCollider(shape collision.Shape, xf math2d.Transform, sensor bool) *Collider {
	c := &Collider{shape: shape, xf: xf, sensor: sensor}
	c.proxies = make([]childProxy, shape.GetChildCount())
	for i := range c.proxies {
		proxy := &c.proxies[i]
		proxy.collider = c
		proxy.child = i
		proxy.proxyID = m.broadPhase.CreateProxy(shape.ComputeAABB(xf, i), proxy)
	}
	return c
}

// MoveCollider places the collider at xf and updates its proxies.
func (m *Manager) MoveCollider(c *Collider, xf math2d.Transform) {
	displacement := xf.P.Sub(c.xf.P)
	c.xf = xf
	for i := range c.proxies {
		proxy := &c.proxies[i]
		m.broadPhase.MoveProxy(proxy.proxyID, c.shape.ComputeAABB(xf, proxy.child), displacement)
	}
}

// RemoveCollider destroys the contacts and proxies of c. Touching
// contacts report EndContact.
func (m *Manager) RemoveCollider(c *Collider) {
	m.contacts = slices.DeleteFunc(m.contacts, func(ct *Contact) bool {
		if ct.proxyA.collider != c && ct.proxyB.collider != c {
			return false
		}
		m.destroy(ct)
		return true
	})

	for i := range c.proxies {
		m.broadPhase.DestroyProxy(c.proxies[i].proxyID)
		c.proxies[i].proxyID = broadphase.NullProxy
	}
}

// FindNewContacts creates contacts for the new pairs of the broad phase.
func (m *Manager) FindNewContacts() {
	m.broadPhase.UpdatePairs(m.addPair)
}

func (m *Manager) addPair(userDataA, userDataB any) {
	proxyA := userDataA.(*childProxy)
	proxyB := userDataB.(*childProxy)

	// Are the children on the same collider?
	if proxyA.collider == proxyB.collider {
		return
	}

	// Does a contact already exist?
	key := makePairKey(proxyA.proxyID, proxyB.proxyID)
	if _, ok := m.index[key]; ok {
		return
	}

	// Pairs without a manifold generator, such as edge/edge, never
	// produce a contact.
	c, err := New(proxyA.collider.shape, proxyA.child, proxyB.collider.shape, proxyB.child)
	if err != nil {
		return
	}

	if c.reversed {
		proxyA, proxyB = proxyB, proxyA
	}
	c.proxyA, c.proxyB = proxyA, proxyB
	c.sensor = proxyA.collider.sensor || proxyB.collider.sensor

	m.contacts = append(m.contacts, c)
	m.index[key] = c
}

// Collide updates every contact. Contacts whose fat boxes stopped
// overlapping are destroyed.
func (m *Manager) Collide() {
	m.contacts = slices.DeleteFunc(m.contacts, func(c *Contact) bool {
		// Here we destroy contacts that cease to overlap in the broad-phase.
		if !m.broadPhase.TestOverlap(c.proxyA.proxyID, c.proxyB.proxyID) {
			m.destroy(c)
			return true
		}

		// The contact persists.
		c.Update(c.proxyA.collider.xf, c.proxyB.collider.xf, m.listener)
		return false
	})
}

func (m *Manager) destroy(c *Contact) {
	if c.touching && m.listener != nil {
		m.listener.EndContact(c)
	}
	delete(m.index, makePairKey(c.proxyA.proxyID, c.proxyB.proxyID))
}
