package broadphase

import (
	"slices"

	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
)

// Pair is a candidate pair of proxies with ProxyIDA < ProxyIDB.
type Pair struct {
	ProxyIDA int
	ProxyIDB int
}

func comparePairs(a, b Pair) int {
	if a.ProxyIDA != b.ProxyIDA {
		return a.ProxyIDA - b.ProxyIDA
	}
	return a.ProxyIDB - b.ProxyIDB
}

// AddPairCallback receives the user data of both proxies of a new pair.
type AddPairCallback func(userDataA, userDataB any)

// BroadPhase wraps a DynamicTree with pair management. Moved proxies are
// buffered; UpdatePairs queries the tree for each of them and reports
// every overlapping pair once.
type BroadPhase struct {
	tree *DynamicTree

	proxyCount int

	moveBuffer []int
	pairBuffer []Pair

	queryProxyID int
}

// New returns a broad phase over a tree with DefaultConfig.
func New() *BroadPhase {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig returns a broad phase whose tree uses cfg.
func NewWithConfig(cfg Config) *BroadPhase {
	return &BroadPhase{
		tree:         NewDynamicTreeWithConfig(cfg),
		moveBuffer:   make([]int, 0, 16),
		pairBuffer:   make([]Pair, 0, 16),
		queryProxyID: NullProxy,
	}
}

// Tree exposes the underlying tree for diagnostics.
func (bp *BroadPhase) Tree() *DynamicTree {
	return bp.tree
}

// CreateProxy creates a proxy with an initial AABB. Pairs are not reported
// until UpdatePairs is called.
func (bp *BroadPhase) CreateProxy(aabb collision.AABB, userData any) int {
	proxyID := bp.tree.CreateProxy(aabb, userData)
	bp.proxyCount++
	bp.bufferMove(proxyID)
	return proxyID
}

// DestroyProxy removes a proxy. The client must drop pairs referring to it.
func (bp *BroadPhase) DestroyProxy(proxyID int) {
	bp.unbufferMove(proxyID)
	bp.proxyCount--
	bp.tree.DestroyProxy(proxyID)
}

// MoveProxy updates a proxy's AABB. Only proxies that leave their fat
// AABB are buffered for pair updates.
func (bp *BroadPhase) MoveProxy(proxyID int, aabb collision.AABB, displacement math2d.Vec2) {
	if bp.tree.MoveProxy(proxyID, aabb, displacement) {
		bp.bufferMove(proxyID)
	}
}

// TouchProxy forces the proxy to be considered in the next UpdatePairs.
func (bp *BroadPhase) TouchProxy(proxyID int) {
	bp.bufferMove(proxyID)
}

func (bp *BroadPhase) bufferMove(proxyID int) {
	bp.moveBuffer = append(bp.moveBuffer, proxyID)
}

func (bp *BroadPhase) unbufferMove(proxyID int) {
	for i, id := range bp.moveBuffer {
		if id == proxyID {
			bp.moveBuffer[i] = NullProxy
		}
	}
}

// queryCallback collects pairs while querying for bp.queryProxyID.
func (bp *BroadPhase) queryCallback(proxyID int) bool {
	// A proxy cannot form a pair with itself.
	if proxyID == bp.queryProxyID {
		return true
	}

	bp.pairBuffer = append(bp.pairBuffer, Pair{
		ProxyIDA: min(proxyID, bp.queryProxyID),
		ProxyIDB: max(proxyID, bp.queryProxyID),
	})
	return true
}

// UpdatePairs reports each new overlapping pair exactly once, in ascending
// proxy id order, then clears the move buffer.
func (bp *BroadPhase) UpdatePairs(callback AddPairCallback) {
	// Reset pair buffer
	bp.pairBuffer = bp.pairBuffer[:0]

	// Perform tree queries for all moving proxies.
	for _, proxyID := range bp.moveBuffer {
		if proxyID == NullProxy {
			continue
		}
		bp.queryProxyID = proxyID

		// Query with the fat AABB so that we don't miss a pair that may
		// touch later.
		bp.tree.Query(bp.queryCallback, bp.tree.FatAABB(proxyID))
	}
	bp.queryProxyID = NullProxy

	// Reset move buffer
	bp.moveBuffer = bp.moveBuffer[:0]

	// Sort the pair buffer to expose duplicates.
	slices.SortFunc(bp.pairBuffer, comparePairs)
	bp.pairBuffer = slices.Compact(bp.pairBuffer)

	// Send the pairs back to the client.
	for _, pair := range bp.pairBuffer {
		callback(bp.tree.UserData(pair.ProxyIDA), bp.tree.UserData(pair.ProxyIDB))
	}
}

// UserData returns the payload of a proxy.
func (bp *BroadPhase) UserData(proxyID int) any {
	return bp.tree.UserData(proxyID)
}

// FatAABB returns the fat AABB of a proxy.
func (bp *BroadPhase) FatAABB(proxyID int) collision.AABB {
	return bp.tree.FatAABB(proxyID)
}

// TestOverlap reports whether the fat AABBs of two proxies overlap.
func (bp *BroadPhase) TestOverlap(proxyIDA, proxyIDB int) bool {
	return collision.TestOverlap(bp.tree.FatAABB(proxyIDA), bp.tree.FatAABB(proxyIDB))
}

// Query calls callback for each proxy overlapping aabb.
func (bp *BroadPhase) Query(callback QueryCallback, aabb collision.AABB) {
	bp.tree.Query(callback, aabb)
}

// RayCast calls callback for each proxy the ray may hit.
func (bp *BroadPhase) RayCast(callback RayCastCallback, input collision.RayCastInput) {
	bp.tree.RayCast(callback, input)
}

func (bp *BroadPhase) ProxyCount() int { return bp.proxyCount }

func (bp *BroadPhase) TreeHeight() int { return bp.tree.Height() }

func (bp *BroadPhase) TreeBalance() int { return bp.tree.MaxBalance() }

func (bp *BroadPhase) TreeQuality() float64 { return bp.tree.AreaRatio() }

// ShiftOrigin translates every proxy by -newOrigin.
func (bp *BroadPhase) ShiftOrigin(newOrigin math2d.Vec2) {
	bp.tree.ShiftOrigin(newOrigin)
}
