// Package repositories implements SQLite persistence for the mock list backend.
//
// Each repository handles CRUD operations with atomic sequence generation for stable ordering.
// All repositories soft delete via deleted_at timestamps and exclude deleted records from queries.
//
// Key Implementations:
//   - [UserRepository] : user accounts with email lookups
//   - [ListRepository] : custom lists with their ordered items and JSON-encoded tags
//
// Lookups that match nothing wrap [shared.ErrNotFound]; unique violations wrap [shared.ErrConflict].
package repositories
