// Package broadphase prunes shape pairs with a dynamic AABB tree. The tree
// stores fattened boxes so that small motions do not touch the tree, and
// the BroadPhase turns moved proxies into a sorted, duplicate free list of
// candidate pairs for the narrow phase.
package broadphase
