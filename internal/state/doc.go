// Package state implements the reactive state container for the ofrenda
// data core.
//
// The container holds an in-memory, path-addressable tree mirroring
// application state (user, memorials, offerings, ui, arSession, ...).
// Paths are dot-separated strings: Get("user.language"), Set, Push, Remove,
// and Subscribe operate on them. A mutation synchronously notifies every
// subscriber whose path is an ancestor of, equal to, or a descendant of the
// changed path before the mutating call returns.
//
// The tree is a derived cache, never authoritative: internal/store owns the
// durable entities, and the container's named actions (AddMemorial,
// UpdateMemorial, PlaceOffering, ...) commit there first and update the
// mirror only on success.
//
// After every mutation the container marks a dirty flag; a debounced flush
// writes a serialized snapshot of the tree to a SnapshotSink so a fresh
// load can restore UI state without waiting on the entity store. Snapshot
// write failures are logged and swallowed - the in-memory tree stays
// correct regardless, and a mutation must never fail because of the cache.
// FlushNow forces a synchronous flush for deterministic tests.
package state
