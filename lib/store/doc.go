// Package store defines the public contract of the key-value store.
//
// Key Components:
//
//   - IStore Interface: typed values (lib/value) under string keys with optional
//     TTL, a reverse value index (Lookup), conjunctive queries (Execute) and
//     snapshot persistence (Save, Backup, Restore). Begin opens an exclusive
//     transaction (ITransaction) that rolls back on Close unless committed.
//
//   - Info: a point-in-time report of the store configuration, entry and index
//     sizes, operation counters and latency timers.
//
//   - Error System: every method returns *Error values carrying a RetCode, so
//     callers can branch on the failure class (IsCode) instead of matching
//     messages. The underlying cause stays reachable through errors.Unwrap.
//
// The implementation lives in the "github.com/ValentinKolb/eKV/lib/store/lstore"
// package. Storage backends are selected through lib/db.
package store
