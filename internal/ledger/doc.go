// Package ledger records stored files and the grants issued for them.
//
// The ledger is a SQLite database opened through database/sql with the
// pure-Go modernc.org/sqlite driver. Connections use WAL journaling so
// read-only reporting commands do not block a concurrent writer. No
// locking is provided beyond SQLite's own statement-level guarantees.
//
// # Schema
//
//	files(identifier PRIMARY KEY, filename, digest, date_added)
//	shares(identifier, recipient, link_token, date_shared, date_removed, active,
//	       PRIMARY KEY(identifier, recipient))
//
// Each (identifier, recipient) pair has a single row holding its current
// grant: re-sharing replaces the row, unsharing marks it inactive with a
// removal date. Foreign keys are declared but not enforced, so the share
// history of a removed file stays queryable.
//
// Timestamps are stored as fixed-width UTC text so that ORDER BY sorts
// them chronologically.
package ledger
