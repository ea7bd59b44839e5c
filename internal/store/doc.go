// Package store provides the SQLite-backed store context that creates,
// resolves and reads persisted entities.
//
// The store keeps three tables:
//   - entities: one row per entity (id, class, seq, primary key, fields)
//   - collection_items: ordered members of list properties
//   - store_meta: the hash of the class table the store was written with
//
// # Write scopes
//
// All writes happen inside a *Tx obtained from Store.Begin. The caller owns
// the scope: it commits when the whole unit of work succeeded and rolls back
// otherwise, so nothing created inside a failed scope is ever observable.
// Packages that only create entities (the sanitizer, fixtures) receive the
// *Tx and never open, commit or roll back a scope themselves.
//
// The store runs on a single connection. Store reads issued while a scope is
// open wait for it to finish; read inside the scope with Tx.Get instead.
//
// # Critical Patterns
//
// Logical ordering:
//   - Every entity gets a monotonically increasing seq at creation
//   - All listings use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Canonical fields:
//   - Fields are stored as RFC 8785 canonical JSON (see internal/ir)
//   - Links are stored as {"ref": "<id>"}; list members live in collection_items
//
// Primary keys:
//   - A class with a primary key is add-or-update: creating an entity whose key
//     already exists updates that row and returns its identity
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity of collection_items
package store
