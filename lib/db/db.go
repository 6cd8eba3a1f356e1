package db

import (
	"fmt"
	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/value"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// Kind selects one of the backend implementations. The set is closed.
type Kind uint8

const (
	KindOrdered   Kind = iota + 1 // iterates in ascending key order (b-tree)
	KindUnordered                 // unspecified iteration order (hash map)
)

func (k Kind) String() string {
	switch k {
	case KindOrdered:
		return "ordered"
	case KindUnordered:
		return "unordered"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Valid reports whether k names a known backend
func (k Kind) Valid() bool {
	return k == KindOrdered || k == KindUnordered
}

// ParseKind converts a backend name into a Kind.
// Accepted names are "ordered" (alias "btree") and "unordered" (alias "hashmap").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ordered", "btree":
		return KindOrdered, nil
	case "unordered", "hashmap":
		return KindUnordered, nil
	default:
		return 0, fmt.Errorf("unsupported backend %q (expected one of: ordered, unordered)", s)
	}
}

// Entry is a decompressed key-value pair returned by a backend
type Entry struct {
	Key     string
	Wrapped value.Wrapped
}

// --------------------------------------------------------------------------
// Backend Interface
// --------------------------------------------------------------------------

// Backend owns the mapping from key to the compressed form of a wrapped value.
// All implementations satisfy the same contract and differ only in iteration order.
//
// Backends never interpret expiration on reads, that is a policy of the caller.
// They are safe for concurrent reads, but compound read-modify-write sequences
// must be serialized by the caller.
type Backend interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Insert compresses and stores w under key, overwriting any prior entry.
	// An error is only returned if the codec fails.
	Insert(key string, w value.Wrapped) (err error)

	// Remove deletes the entry for key and returns the prior value if there was one.
	Remove(key string) (w value.Wrapped, loaded bool, err error)

	// RemoveExpired removes every entry that is expired at now and returns the
	// removed entries. Entries without expiration are never removed.
	// A corrupted entry aborts the sweep with an error before anything is removed.
	RemoveExpired(now time.Time) (removed []Entry, err error)

	// --------------------------------------------------------------------------
	// Read Operations
	// --------------------------------------------------------------------------

	// Get decompresses and returns the current value for key, regardless of its expiration.
	// The returned value is owned by the caller.
	Get(key string) (w value.Wrapped, loaded bool, err error)

	// Iterate runs a fresh decompression pass over all entries and calls fn for each one
	// until fn returns false. Every call starts a new pass over the state at call time.
	// A decompression failure stops the pass and is returned.
	Iterate(fn func(key string, w value.Wrapped) bool) (err error)

	// Len returns the number of stored entries (including expired but not yet swept ones)
	Len() int

	// --------------------------------------------------------------------------
	// Raw Access (used for snapshots)
	// --------------------------------------------------------------------------

	// RangeRaw calls fn with the compressed bytes of every entry until fn returns false.
	// The byte slices must not be modified.
	RangeRaw(fn func(key string, data []byte) bool)

	// InsertRaw stores already compressed bytes under key.
	InsertRaw(key string, data []byte)

	// --------------------------------------------------------------------------
	// Metadata
	// --------------------------------------------------------------------------

	// Kind returns the backend kind
	Kind() Kind

	// Codec returns the codec used to compress entries
	Codec() codec.Codec
}

// Factory creates an empty backend using the given codec
type Factory func(c codec.Codec) Backend
