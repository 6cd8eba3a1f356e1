// Package lockmgr implements advisory locks on top of any store.IStore.
//
// The lock manager keeps no state of its own: a lock is a key whose value is
// the random owner ID of its holder. Any number of lock managers may be
// created on the same store and will see the same locks.
//
// Implementation Approach:
//
//   - Lock Acquisition: expired entries are swept first, then a transaction
//     checks that the key is absent and inserts the new owner ID. Because
//     transactions are exclusive, only one requester can win.
//
//   - Timeouts: a lock can be given a timeout, which becomes the TTL of the
//     key. An expired lock counts as free for the next acquisition.
//
//   - Safe Release: ReleaseLock compares the stored owner ID with the given
//     one inside a transaction before removing the key.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager(s)
//
//	acquired, ownerID, err := locks.AcquireLock("resource:123", 30*time.Second)
//	if err != nil {
//	    // Handle error
//	}
//	if acquired {
//	    // Use the resource
//	    released, err := locks.ReleaseLock("resource:123", ownerID)
//	}
//
// Lock keys share the key space of the store, so they are visible to queries
// and lookups like any other entry.
package lockmgr
