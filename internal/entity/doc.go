// Package entity defines the domain model for the ofrenda data core.
//
// Four entity kinds are durable:
//   - Memorial: a remembrance record, the root of the model
//   - FamilyGroup: a sharing/collaboration unit
//   - VirtualOffering: a placed offering tied to a memorial
//   - UserPreferences: per-user settings, one row per user
//
// Entities are plain data. Validation and sanitization live in
// internal/validate; persistence lives in internal/store. The closed enum
// sets (offering types, member roles, permissions, sync statuses) are
// exposed here as maps, and the altar level bounds as constants, so
// validators and callers share one definition.
//
// All fields are JSON-serializable; dates travel as RFC 3339 strings on the
// wire and rehydrate to time.Time on read.
package entity
