package broadphase

import (
	"errors"
	"fmt"
	"math"

	"github.com/ByteArena/box2d-collision/collision"
	"github.com/ByteArena/box2d-collision/math2d"
	"github.com/ByteArena/box2d-collision/settings"
)

// NullProxy is the id of no proxy.
const NullProxy = -1

const nullNode = -1

// ErrInvalidTree is wrapped by every error returned from Validate.
var ErrInvalidTree = errors.New("broadphase: invalid tree")

// QueryCallback is called for each leaf overlapping the query box. Return
// false to stop the query.
type QueryCallback func(proxyID int) bool

// RayCastCallback is called for each leaf the ray may hit. The return value
// controls the cast:
//
//	-1  ignore this proxy and continue
//	 0  terminate the cast
//	 v  clip the ray to fraction v and continue, for 0 < v <= 1
type RayCastCallback func(input collision.RayCastInput, proxyID int) float64

// Config holds the fattening parameters of a tree.
type Config struct {
	// AABBExtension is added to every side of a proxy box.
	AABBExtension float64

	// AABBMultiplier scales the displacement used to predict motion.
	AABBMultiplier float64
}

// DefaultConfig returns the settings package defaults.
func DefaultConfig() Config {
	return Config{
		AABBExtension:  settings.AABBExtension,
		AABBMultiplier: settings.AABBMultiplier,
	}
}

type treeNode struct {
	// Enlarged AABB
	aabb collision.AABB

	userData any

	parent int
	child1 int
	child2 int

	// leaf = 0, free node = -1
	height int
}

func (n *treeNode) isLeaf() bool {
	return n.child1 == nullNode
}

// DynamicTree is a dynamic AABB tree, inspired by Nathanael Presson's
// btDbvt. Leaves are proxies with a fattened AABB so that the client object
// can move by small amounts without triggering a tree update.
//
// Nodes live in an arena addressed by index, so proxy ids stay valid as the
// arena grows. Freed indices are kept on a stack and reused.
//
// Mutating methods must be serialized by the caller. Query and RayCast keep
// their traversal stack local and may run concurrently with each other.
type DynamicTree struct {
	cfg Config

	root  int
	nodes []treeNode
	free  []int

	nodeCount      int
	insertionCount int
}

// NewDynamicTree creates an empty tree with DefaultConfig.
func NewDynamicTree() *DynamicTree {
	return NewDynamicTreeWithConfig(DefaultConfig())
}

// NewDynamicTreeWithConfig creates an empty tree with the given fattening
// parameters.
func NewDynamicTreeWithConfig(cfg Config) *DynamicTree {
	return &DynamicTree{
		cfg:   cfg,
		root:  nullNode,
		nodes: make([]treeNode, 0, 16),
	}
}

// Config returns the fattening parameters.
func (t *DynamicTree) Config() Config {
	return t.cfg
}

// allocateNode takes a node from the free stack or grows the arena.
func (t *DynamicTree) allocateNode() int {
	var id int
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		id = len(t.nodes)
		t.nodes = append(t.nodes, treeNode{})
	}

	t.nodes[id] = treeNode{
		parent: nullNode,
		child1: nullNode,
		child2: nullNode,
	}
	t.nodeCount++
	return id
}

func (t *DynamicTree) freeNode(id int) {
	settings.Assert(0 <= id && id < len(t.nodes), "DynamicTree.freeNode", "node id out of range")
	settings.Assert(t.nodeCount > 0, "DynamicTree.freeNode", "tree has no nodes")
	t.nodes[id] = treeNode{parent: nullNode, child1: nullNode, child2: nullNode, height: -1}
	t.free = append(t.free, id)
	t.nodeCount--
}

func (t *DynamicTree) checkLeaf(op string, proxyID int) {
	settings.Assert(0 <= proxyID && proxyID < len(t.nodes), op, "proxy id out of range")
	settings.Assert(t.nodes[proxyID].height == 0 && t.nodes[proxyID].isLeaf(), op, "proxy is not a leaf")
}

// CreateProxy inserts a leaf for aabb, fattened by the configured
// extension, and returns its id.
func (t *DynamicTree) CreateProxy(aabb collision.AABB, userData any) int {
	proxyID := t.allocateNode()

	t.nodes[proxyID].aabb = aabb.Extend(t.cfg.AABBExtension)
	t.nodes[proxyID].userData = userData
	t.nodes[proxyID].height = 0

	t.insertLeaf(proxyID)
	return proxyID
}

// DestroyProxy removes a leaf. It panics if proxyID is not a leaf.
func (t *DynamicTree) DestroyProxy(proxyID int) {
	t.checkLeaf("DynamicTree.DestroyProxy", proxyID)

	t.removeLeaf(proxyID)
	t.freeNode(proxyID)
}

// MoveProxy re-inserts a proxy whose tight aabb has left its fat AABB. The
// new fat AABB is extended by the configured margin plus the multiplier
// times displacement, on the side the proxy is moving to. It reports
// whether the proxy was re-inserted.
func (t *DynamicTree) MoveProxy(proxyID int, aabb collision.AABB, displacement math2d.Vec2) bool {
	t.checkLeaf("DynamicTree.MoveProxy", proxyID)

	if t.nodes[proxyID].aabb.Contains(aabb) {
		return false
	}

	t.removeLeaf(proxyID)

	// Extend AABB.
	b := aabb.Extend(t.cfg.AABBExtension)

	// Predict AABB displacement.
	d := displacement.Mul(t.cfg.AABBMultiplier)
	for i := 0; i < 2; i++ {
		if d[i] < 0.0 {
			b.LowerBound[i] += d[i]
		} else {
			b.UpperBound[i] += d[i]
		}
	}

	t.nodes[proxyID].aabb = b

	t.insertLeaf(proxyID)
	return true
}

// UserData returns the payload given to CreateProxy.
func (t *DynamicTree) UserData(proxyID int) any {
	settings.Assert(0 <= proxyID && proxyID < len(t.nodes), "DynamicTree.UserData", "proxy id out of range")
	return t.nodes[proxyID].userData
}

// FatAABB returns the enlarged box stored for a proxy.
func (t *DynamicTree) FatAABB(proxyID int) collision.AABB {
	settings.Assert(0 <= proxyID && proxyID < len(t.nodes), "DynamicTree.FatAABB", "proxy id out of range")
	return t.nodes[proxyID].aabb
}

// Query calls callback for each proxy whose fat AABB overlaps aabb.
func (t *DynamicTree) Query(callback QueryCallback, aabb collision.AABB) {
	var buf [256]int
	stack := append(buf[:0], t.root)

	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nodeID == nullNode {
			continue
		}

		node := &t.nodes[nodeID]
		if !collision.TestOverlap(node.aabb, aabb) {
			continue
		}

		if node.isLeaf() {
			if !callback(nodeID) {
				return
			}
		} else {
			stack = append(stack, node.child1, node.child2)
		}
	}
}

// RayCast calls callback for each proxy whose fat AABB the ray may cross.
// The callback does the exact ray cast against the proxy's shape. The cost
// is roughly k * log(n), where k is the number of collisions and n the
// proxy count.
func (t *DynamicTree) RayCast(callback RayCastCallback, input collision.RayCastInput) {
	p1 := input.P1
	p2 := input.P2
	r := p2.Sub(p1)
	settings.Assert(r.LenSqr() > 0.0, "DynamicTree.RayCast", "zero length ray")
	r = math2d.Unit(r)

	// v is perpendicular to the segment.
	v := math2d.CrossSV(1.0, r)
	absV := math2d.Abs(v)

	// Separating axis for segment (Gino, p80).
	// |dot(v, p1 - c)| > dot(|v|, h)

	maxFraction := input.MaxFraction

	// Build a bounding box for the segment.
	segmentAABB := collision.NewAABB(p1, p1.Add(p2.Sub(p1).Mul(maxFraction)))

	var buf [256]int
	stack := append(buf[:0], t.root)

	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nodeID == nullNode {
			continue
		}

		node := &t.nodes[nodeID]
		if !collision.TestOverlap(node.aabb, segmentAABB) {
			continue
		}

		c := node.aabb.Center()
		h := node.aabb.Extents()
		separation := math.Abs(v.Dot(p1.Sub(c))) - absV.Dot(h)
		if separation > 0.0 {
			continue
		}

		if !node.isLeaf() {
			stack = append(stack, node.child1, node.child2)
			continue
		}

		subInput := collision.RayCastInput{P1: p1, P2: p2, MaxFraction: maxFraction}
		value := callback(subInput, nodeID)

		if value == 0.0 {
			// The client has terminated the ray cast.
			return
		}

		if value > 0.0 {
			// Update segment bounding box.
			maxFraction = value
			segmentAABB = collision.NewAABB(p1, p1.Add(p2.Sub(p1).Mul(maxFraction)))
		}
	}
}

func (t *DynamicTree) insertLeaf(leaf int) {
	t.insertionCount++

	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	// Find the best sibling for this node.
	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combinedArea := collision.Combine(t.nodes[index].aabb, leafAABB).Perimeter()

		// Cost of creating a new parent for this node and the new leaf.
		cost := 2.0 * combinedArea

		// Minimum cost of pushing the leaf further down the tree.
		inheritanceCost := 2.0 * (combinedArea - area)

		cost1 := t.descendCost(child1, leafAABB) + inheritanceCost
		cost2 := t.descendCost(child2, leafAABB) + inheritanceCost

		// Descend according to the minimum cost.
		if cost < cost1 && cost < cost2 {
			break
		}

		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// Create a new parent.
	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = collision.Combine(leafAABB, t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1
	t.nodes[newParent].child1 = sibling
	t.nodes[newParent].child2 = leaf
	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	if oldParent != nullNode {
		// The sibling was not the root.
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
	} else {
		t.root = newParent
	}

	// Walk back up the tree fixing heights and AABBs.
	t.refit(t.nodes[leaf].parent)
}

// descendCost is the increase in perimeter from pushing leafAABB into the
// subtree at child.
func (t *DynamicTree) descendCost(child int, leafAABB collision.AABB) float64 {
	combined := collision.Combine(leafAABB, t.nodes[child].aabb).Perimeter()
	if t.nodes[child].isLeaf() {
		return combined
	}
	return combined - t.nodes[child].aabb.Perimeter()
}

// refit balances and recomputes every node from index up to the root.
func (t *DynamicTree) refit(index int) {
	for index != nullNode {
		index = t.balance(index)

		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2
		settings.Assert(child1 != nullNode && child2 != nullNode, "DynamicTree.refit", "internal node without children")

		t.nodes[index].height = 1 + max(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = collision.Combine(t.nodes[child1].aabb, t.nodes[child2].aabb)

		index = t.nodes[index].parent
	}
}

func (t *DynamicTree) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	sibling := t.nodes[parent].child1
	if sibling == leaf {
		sibling = t.nodes[parent].child2
	}

	if grandParent == nullNode {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
		return
	}

	// Destroy parent and connect sibling to grandParent.
	if t.nodes[grandParent].child1 == parent {
		t.nodes[grandParent].child1 = sibling
	} else {
		t.nodes[grandParent].child2 = sibling
	}
	t.nodes[sibling].parent = grandParent
	t.freeNode(parent)

	// Adjust ancestor bounds.
	t.refit(grandParent)
}

// balance performs a left or right rotation if node iA is imbalanced and
// returns the index of the subtree's new root.
func (t *DynamicTree) balance(iA int) int {
	settings.Assert(iA != nullNode, "DynamicTree.balance", "null node")

	A := &t.nodes[iA]
	if A.isLeaf() || A.height < 2 {
		return iA
	}

	iB := A.child1
	iC := A.child2
	B := &t.nodes[iB]
	C := &t.nodes[iC]

	balance := C.height - B.height

	switch {
	case balance > 1:
		// Rotate C up.
		t.rotateUp(iA, iC, iB, false)
		return iC
	case balance < -1:
		// Rotate B up.
		t.rotateUp(iA, iB, iC, true)
		return iB
	}

	return iA
}

// rotateUp lifts child iUp of iA into iA's place. iOther is iA's remaining
// child. The taller grandchild stays under iUp; the shorter one moves to iA
// in the slot iUp occupied. fromLeft is true when iUp was child1 of iA.
func (t *DynamicTree) rotateUp(iA, iUp, iOther int, fromLeft bool) {
	A := &t.nodes[iA]
	U := &t.nodes[iUp]

	iF := U.child1
	iG := U.child2
	F := &t.nodes[iF]
	G := &t.nodes[iG]

	// Swap A and U.
	U.child1 = iA
	U.parent = A.parent
	A.parent = iUp

	// A's old parent should point to U.
	if U.parent != nullNode {
		p := &t.nodes[U.parent]
		if p.child1 == iA {
			p.child1 = iUp
		} else {
			settings.Assert(p.child2 == iA, "DynamicTree.balance", "broken parent link")
			p.child2 = iUp
		}
	} else {
		t.root = iUp
	}

	// Keep the taller grandchild under U.
	iKeep, iMove := iG, iF
	if F.height > G.height {
		iKeep, iMove = iF, iG
	}

	U.child2 = iKeep
	if fromLeft {
		A.child1 = iMove
	} else {
		A.child2 = iMove
	}
	t.nodes[iMove].parent = iA

	other := &t.nodes[iOther]
	moved := &t.nodes[iMove]
	kept := &t.nodes[iKeep]

	A.aabb = collision.Combine(other.aabb, moved.aabb)
	U.aabb = collision.Combine(A.aabb, kept.aabb)

	A.height = 1 + max(other.height, moved.height)
	U.height = 1 + max(A.height, kept.height)
}

// Height returns the height of the root, computed incrementally. An empty
// tree has height 0.
func (t *DynamicTree) Height() int {
	if t.root == nullNode {
		return 0
	}
	return t.nodes[t.root].height
}

// ComputeHeight recounts the tree height from scratch.
func (t *DynamicTree) ComputeHeight() int {
	if t.root == nullNode {
		return 0
	}
	return t.computeHeight(t.root)
}

func (t *DynamicTree) computeHeight(nodeID int) int {
	node := &t.nodes[nodeID]
	if node.isLeaf() {
		return 0
	}
	return 1 + max(t.computeHeight(node.child1), t.computeHeight(node.child2))
}

// AreaRatio is the sum of all node perimeters over the root perimeter, a
// measure of tree quality.
func (t *DynamicTree) AreaRatio() float64 {
	if t.root == nullNode {
		return 0.0
	}

	rootArea := t.nodes[t.root].aabb.Perimeter()

	totalArea := 0.0
	for i := range t.nodes {
		if t.nodes[i].height < 0 {
			// Free node in pool
			continue
		}
		totalArea += t.nodes[i].aabb.Perimeter()
	}

	return totalArea / rootArea
}

// MaxBalance returns the largest height difference between the two
// children of any internal node.
func (t *DynamicTree) MaxBalance() int {
	maxBalance := 0
	for i := range t.nodes {
		node := &t.nodes[i]
		if node.height <= 1 {
			continue
		}

		balance := t.nodes[node.child2].height - t.nodes[node.child1].height
		if balance < 0 {
			balance = -balance
		}
		maxBalance = max(maxBalance, balance)
	}
	return maxBalance
}

// ProxyCount returns the number of leaves.
func (t *DynamicTree) ProxyCount() int {
	if t.root == nullNode {
		return 0
	}
	// A full binary tree with n leaves has n-1 internal nodes.
	return (t.nodeCount + 1) / 2
}

// Validate checks the parent links, leaf shape, heights and boxes of every
// node, plus the free list bookkeeping. It returns the first violation.
func (t *DynamicTree) Validate() error {
	if err := t.validateStructure(t.root); err != nil {
		return err
	}
	if err := t.validateMetrics(t.root); err != nil {
		return err
	}

	if got, want := t.Height(), t.ComputeHeight(); got != want {
		return fmt.Errorf("%w: height %d, recomputed %d", ErrInvalidTree, got, want)
	}

	if t.nodeCount+len(t.free) != len(t.nodes) {
		return fmt.Errorf("%w: %d live + %d free nodes in an arena of %d",
			ErrInvalidTree, t.nodeCount, len(t.free), len(t.nodes))
	}
	for _, id := range t.free {
		if t.nodes[id].height != -1 {
			return fmt.Errorf("%w: free node %d has height %d", ErrInvalidTree, id, t.nodes[id].height)
		}
	}
	return nil
}

func (t *DynamicTree) validateStructure(index int) error {
	if index == nullNode {
		return nil
	}

	if index == t.root && t.nodes[index].parent != nullNode {
		return fmt.Errorf("%w: root %d has parent %d", ErrInvalidTree, index, t.nodes[index].parent)
	}

	node := &t.nodes[index]
	if node.isLeaf() {
		if node.child2 != nullNode || node.height != 0 {
			return fmt.Errorf("%w: malformed leaf %d", ErrInvalidTree, index)
		}
		return nil
	}

	for _, child := range [2]int{node.child1, node.child2} {
		if child < 0 || child >= len(t.nodes) {
			return fmt.Errorf("%w: node %d has child %d out of range", ErrInvalidTree, index, child)
		}
		if t.nodes[child].parent != index {
			return fmt.Errorf("%w: child %d of node %d points to parent %d",
				ErrInvalidTree, child, index, t.nodes[child].parent)
		}
		if err := t.validateStructure(child); err != nil {
			return err
		}
	}
	return nil
}

func (t *DynamicTree) validateMetrics(index int) error {
	if index == nullNode {
		return nil
	}

	node := &t.nodes[index]
	if node.isLeaf() {
		return nil
	}

	child1 := &t.nodes[node.child1]
	child2 := &t.nodes[node.child2]

	if height := 1 + max(child1.height, child2.height); node.height != height {
		return fmt.Errorf("%w: node %d has height %d, children imply %d", ErrInvalidTree, index, node.height, height)
	}

	if aabb := collision.Combine(child1.aabb, child2.aabb); aabb != node.aabb {
		return fmt.Errorf("%w: node %d box %v is not the union of its children %v", ErrInvalidTree, index, node.aabb, aabb)
	}

	if err := t.validateMetrics(node.child1); err != nil {
		return err
	}
	return t.validateMetrics(node.child2)
}

// RebuildBottomUp discards the internal nodes and rebuilds an optimal tree
// by repeatedly pairing the two subtrees with the smallest combined
// perimeter. This is O(n^3) and meant for diagnostics.
func (t *DynamicTree) RebuildBottomUp() {
	leaves := make([]int, 0, t.nodeCount)

	// Build array of leaves. Free the rest.
	for i := range t.nodes {
		if t.nodes[i].height < 0 {
			// free node in pool
			continue
		}

		if t.nodes[i].isLeaf() {
			t.nodes[i].parent = nullNode
			leaves = append(leaves, i)
		} else {
			t.freeNode(i)
		}
	}

	if len(leaves) == 0 {
		t.root = nullNode
		return
	}

	count := len(leaves)
	for count > 1 {
		minCost := settings.MaxFloat
		iMin, jMin := -1, -1

		for i := 0; i < count; i++ {
			aabbi := t.nodes[leaves[i]].aabb

			for j := i + 1; j < count; j++ {
				cost := collision.Combine(aabbi, t.nodes[leaves[j]].aabb).Perimeter()
				if cost < minCost {
					iMin, jMin = i, j
					minCost = cost
				}
			}
		}

		index1 := leaves[iMin]
		index2 := leaves[jMin]

		parentIndex := t.allocateNode()
		parent := &t.nodes[parentIndex]
		parent.child1 = index1
		parent.child2 = index2
		parent.height = 1 + max(t.nodes[index1].height, t.nodes[index2].height)
		parent.aabb = collision.Combine(t.nodes[index1].aabb, t.nodes[index2].aabb)
		parent.parent = nullNode

		t.nodes[index1].parent = parentIndex
		t.nodes[index2].parent = parentIndex

		leaves[jMin] = leaves[count-1]
		leaves[iMin] = parentIndex
		count--
	}

	t.root = leaves[0]
}

// ShiftOrigin translates every box by -newOrigin. Use it when the world
// origin moves.
func (t *DynamicTree) ShiftOrigin(newOrigin math2d.Vec2) {
	for i := range t.nodes {
		if t.nodes[i].height < 0 {
			continue
		}
		t.nodes[i].aabb = t.nodes[i].aabb.Shift(newOrigin)
	}
}
