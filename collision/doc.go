// Package collision implements the narrow phase of a 2D rigid body engine:
// shapes, distance proxies, GJK distance, contact manifolds for every
// supported shape pair, and time of impact by conservative advancement.
//
// All functions are pure with respect to package state. Scratch storage
// lives on the caller's stack, so distinct goroutines may collide distinct
// shape pairs concurrently. Statistics that the engine would otherwise keep
// globally are returned in outputs and can be folded into a Profile.
package collision
