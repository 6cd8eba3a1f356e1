package lockmgr

import "time"

// ILockManager defines the interface for an advisory lock provider.
type ILockManager interface {
	// AcquireLock acquires the lock for key. A timeout > 0 lets the lock expire
	// after that duration, 0 keeps it until released.
	// Returns whether the lock was acquired and the owner ID needed to release it.
	AcquireLock(key string, timeout time.Duration) (ok bool, ownerID string, err error)

	// ReleaseLock releases the lock for key if ownerID owns it.
	// Returns true if the lock was released or did not exist.
	ReleaseLock(key string, ownerID string) (ok bool, err error)
}
