package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/eKV/lib/db/util"
	"github.com/ValentinKolb/eKV/lib/query"
	"github.com/ValentinKolb/eKV/lib/value"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the interface of an embedded key-value store with a value index,
// conditional queries, expiration and snapshot persistence.
// All errors returned by implementations are of type *Error.
type IStore interface {
	// Insert stores v under key, replacing any previous value. A ttl <= 0 means the value never expires.
	Insert(key string, v value.Value, ttl time.Duration) error
	// Get returns the value stored for key. Expired values are returned until they are swept.
	Get(key string) (v value.Value, loaded bool, err error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
	// Execute returns the values of all records matching q in backend iteration order.
	Execute(q *query.Query) ([]value.Value, error)
	// Lookup returns the keys currently holding v in insertion order (empty if none).
	Lookup(v value.Value) ([]string, error)
	// RemoveExpired sweeps all expired entries and returns how many were removed.
	RemoveExpired() (int, error)
	// Save writes a snapshot of the whole store to path, replacing the file atomically.
	Save(path string) error
	// Backup writes a snapshot named backup_<YYYYMMDD_HHMMSS>.db into dir and returns its path.
	Backup(dir string) (string, error)
	// Restore replaces the entire state of the store with the snapshot at path.
	Restore(path string) error
	// Begin opens the single exclusive transaction. It blocks until no other
	// transaction is open and all in-flight direct calls have returned.
	Begin() ITransaction
	// Info returns statistics about the store. The values are best effort.
	Info() Info
	// Close stops background work. The store must not be used afterward.
	Close() error
}

// ITransaction is an exclusive unit of work on an IStore.
//
// Usage:
//
//	tx := s.Begin()
//	defer tx.Close() // rolls back unless Commit was called
//	...
//	return tx.Commit()
//
// While a transaction is open, direct calls on the store block, so a
// goroutine holding a transaction must only use the transaction.
type ITransaction interface {
	Insert(key string, v value.Value, ttl time.Duration) error
	Remove(key string) error
	Get(key string) (v value.Value, loaded bool, err error)
	// GetLive is Get for entries that are not expired at the store clock.
	// An expired but unswept entry reports loaded=false.
	GetLive(key string) (v value.Value, loaded bool, err error)
	// Commit keeps all changes and ends the transaction.
	Commit() error
	// Rollback undoes all changes made through the transaction and ends it.
	Rollback() error
	// Close ends the transaction, running Rollback if it neither committed nor rolled back.
	// Calling Close again is a no-op.
	Close() error
}

// --------------------------------------------------------------------------
// Info
// --------------------------------------------------------------------------

// TimerStats summarizes a latency timer
type TimerStats struct {
	Count  int64   `json:"count"`
	MeanMs float64 `json:"mean_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Info describes the state of a store
type Info struct {
	Backend       string        `json:"backend"`
	Codec         string        `json:"codec"`
	SweepInterval time.Duration `json:"sweep_interval"`
	Entries       int           `json:"entries"`
	IndexBuckets  int           `json:"index_buckets"`

	// sizes of the compressed entries
	StoredBytes     int64 `json:"stored_bytes"`
	AvgEntrySize    int   `json:"avg_entry_size"`
	MedianEntrySize int   `json:"median_entry_size_estimate"`
	P99EntrySize    int   `json:"p99_entry_size_estimate"`

	// only set for sharded backends
	ShardDistribution *util.DistributionStats `json:"shard_distribution,omitempty"`

	Counters map[string]uint64     `json:"counters"`
	Timers   map[string]TimerStats `json:"timers"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code, a message and an optional cause
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
	Err  error   // The underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ekv error (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("ekv error (code %s): %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code and message wrapping err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// IsCode reports whether err is (or wraps) an *Error with the given code
func IsCode(err error, code RetCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Command executed successfully.
	RetCInternalError                     // 1: Command failed due to an internal error.
	RetCStorageError                      // 2: Backend or codec failure, e.g. corrupted entry.
	RetCQueryError                        // 3: Malformed query.
	RetCSerializationError                // 4: Snapshot could not be encoded or decoded.
	RetCIOError                           // 5: File system failure.
	RetCTxClosed                          // 6: Transaction already committed or rolled back.
	RetCInvalidConfig                     // 7: Unsupported backend kind or codec.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCStorageError:
		return "StorageError"
	case RetCQueryError:
		return "QueryError"
	case RetCSerializationError:
		return "SerializationError"
	case RetCIOError:
		return "IOError"
	case RetCTxClosed:
		return "TxClosed"
	case RetCInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}
