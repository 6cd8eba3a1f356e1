// Package lstore implements store.IStore as a local, in-memory store with
// snapshot persistence.
//
// A Store combines a storage backend (ordered or unordered, see lib/db) that
// holds compressed entries with a secondary value index (lib/index). Every
// mutation updates both while holding the storage lock and the index lock,
// always acquired in that order, so no reader ever sees them diverge:
//
//   - Insert, Remove and RemoveExpired hold both write locks
//   - Get and Execute hold the storage read lock
//   - Lookup holds the index read lock
//
// Expiration: Insert stores an absolute deadline (now + ttl). Get does not
// filter expired values; they stay visible until RemoveExpired runs, either
// called directly or by the background sweeper (Options.SweepInterval).
//
// Transactions: Begin takes an exclusive gate that every direct call holds in
// shared mode, so a transaction never interleaves with other callers. Each
// mutation records the previous state of its key. Rollback replays those steps
// in reverse, Commit drops them. Close rolls back unless the transaction
// already ended, which makes it the required scope-exit call:
//
//	tx := s.Begin()
//	defer tx.Close()
//	if err := tx.Insert("a", value.Int(1), 0); err != nil {
//		return err
//	}
//	return tx.Commit()
//
// Persistence: Save writes a self-describing binary snapshot to a temp file
// and renames it into place. Load and Restore validate that the stored index
// matches the entries. Backup names files by the current second, so two
// backups in the same second overwrite each other.
//
// Metrics: operation counters are kept in a per-store VictoriaMetrics set
// (WriteMetrics), latency timers in a go-metrics registry (Info).
package lstore
