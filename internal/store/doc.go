// Package store provides SQLite-backed durable storage for ofrenda entities.
//
// The store is the source of truth for four keyed collections:
//   - memorials (by id), with a secondary index on altar_level
//   - family_groups (by group_id), with a unique index on invite_code
//   - virtual_offerings (by id), with secondary indices on memorial_id and type
//   - user_preferences (by user_id)
//
// Records are stored as a JSON document column plus typed columns for every
// indexed field. Indexed lookups are required to return the same result set
// as a full scan filtered by the same predicate.
//
// Every save routes through internal/validate first; an invalid entity is
// rejected without touching the database. Each operation is transactional in
// isolation: deleting a memorial removes its offerings in the same
// transaction, and import replaces all collections atomically.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// The store assumes a single logical writer. It never retries failed
// transactions; retry policy belongs to the caller.
package store
