// Package validate is the schema validation gate for the ofrenda data core.
//
// Every entity mutation routes through this package before it reaches the
// persistent store. Validators are pure functions: no I/O, deterministic
// given their input, and the only place allowed to alter field values before
// persistence (sanitization).
//
// Each validator returns a Result carrying three things:
//   - Valid: whether the input may be persisted
//   - Errors: every problem found, accumulated rather than short-circuited
//   - Sanitized: the cleaned value to persist when Valid is true
//
// Two entry points exist per entity kind. The typed validators (Memorial,
// FamilyGroup, Offering, Preferences) take a constructed entity and enforce
// the domain invariants. The raw validators (MemorialRaw, FamilyGroupRaw,
// OfferingRaw) additionally gate untyped input, maps decoded from user
// uploads or CLI flags, and produce presence/type errors such as
// "name is required and must be text", distinct from the post-sanitization
// "name cannot be empty after sanitization".
package validate
