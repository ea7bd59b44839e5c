// Package collection provides ordered, append-only collections of persisted
// entities whose element class is chosen at runtime.
//
// A Collection is created for one element class and keeps it for its whole
// lifetime. Every Add checks the entity's class against it, so a collection
// never holds a foreign element. Elements keep insertion order; there is no
// removal or reordering.
//
// Equality is entity identity (class and ID), never field comparison.
//
// A Collection is not safe for concurrent mutation; callers serialize writes
// the same way they serialize use of a store write scope.
package collection
