// Package audit records slink operations in an append-only log.
//
// The log is JSON Lines (one object per line) stored next to the share
// ledger:
//
//	<dir of db_path>/audit.jsonl
//
// Each entry carries a UTC timestamp, the operating principal, the
// operation name and whichever of identifier, filename, recipient, token
// and removed count apply. Entries contain link tokens, so the file is
// created with mode 0600.
//
// Logging is best-effort: a failure to write never fails the operation
// being logged. ReadEntries skips malformed lines so a partial write does
// not hide the rest of the log.
package audit
