// Package kv implements device persistence: a small asynchronous-style
// key/value store holding the registry of local accounts and the session
// pointer.
//
// Implementations:
//   - SQLiteRepository: modernc.org/sqlite file database, schema managed by
//     goose (see OpenSQLite).
//   - BadgerRepository: embedded BadgerDB directory (see OpenBadger).
//   - MemoryRepository: process memory, for tests and throwaway sessions.
//
// All methods honor context cancellation where the backend supports it.
// Missing keys are not errors: GetItem reports them with ok == false and
// RemoveItem/RemoveItems ignore them.
package kv
