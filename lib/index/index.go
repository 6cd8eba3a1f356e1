package index

import (
	"slices"

	"github.com/ValentinKolb/eKV/lib/value"
)

// Index maps the canonical string form of a value to the keys holding it.
// Keys within a bucket keep insertion order and never repeat, empty buckets are deleted.
//
// Thread-safety: Index is not synchronized. The store guards it with its own
// lock and mutates it in the same critical section as the storage backend.
type Index struct {
	buckets map[string][]string
}

// New creates an empty index
func New() *Index {
	return &Index{buckets: make(map[string][]string)}
}

// FromBuckets creates an index from a bucket snapshot as returned by Buckets.
// The slices are copied.
func FromBuckets(buckets map[string][]string) *Index {
	idx := New()
	for bucket, keys := range buckets {
		if len(keys) > 0 {
			idx.buckets[bucket] = slices.Clone(keys)
		}
	}
	return idx
}

// Insert appends key to the bucket of v. A key already in the bucket is not added twice.
func (idx *Index) Insert(key string, v value.Value) {
	bucket := v.String()
	keys := idx.buckets[bucket]
	if slices.Contains(keys, key) {
		return
	}
	idx.buckets[bucket] = append(keys, key)
}

// Remove deletes key from the bucket of v and drops the bucket once it is empty
func (idx *Index) Remove(key string, v value.Value) {
	bucket := v.String()
	keys, ok := idx.buckets[bucket]
	if !ok {
		return
	}
	i := slices.Index(keys, key)
	if i < 0 {
		return
	}
	keys = slices.Delete(keys, i, i+1)
	if len(keys) == 0 {
		delete(idx.buckets, bucket)
		return
	}
	idx.buckets[bucket] = keys
}

// RemoveKey removes key from every bucket. It is used when the value stored
// for key is unknown, e.g. because the entry could not be decoded.
func (idx *Index) RemoveKey(key string) {
	for bucket, keys := range idx.buckets {
		if i := slices.Index(keys, key); i >= 0 {
			keys = slices.Delete(keys, i, i+1)
			if len(keys) == 0 {
				delete(idx.buckets, bucket)
			} else {
				idx.buckets[bucket] = keys
			}
		}
	}
}

// Lookup returns a copy of the keys holding v in insertion order
func (idx *Index) Lookup(v value.Value) ([]string, bool) {
	keys, ok := idx.buckets[v.String()]
	if !ok {
		return nil, false
	}
	return slices.Clone(keys), true
}

// Len returns the number of buckets
func (idx *Index) Len() int {
	return len(idx.buckets)
}

// Buckets returns a deep copy of all buckets
func (idx *Index) Buckets() map[string][]string {
	out := make(map[string][]string, len(idx.buckets))
	for bucket, keys := range idx.buckets {
		out[bucket] = slices.Clone(keys)
	}
	return out
}

// Equal reports whether both indexes hold the same buckets with the same keys.
// Key order within a bucket is ignored since it depends on insertion history.
func (idx *Index) Equal(other *Index) bool {
	if len(idx.buckets) != len(other.buckets) {
		return false
	}
	for bucket, keys := range idx.buckets {
		otherKeys, ok := other.buckets[bucket]
		if !ok || len(keys) != len(otherKeys) {
			return false
		}
		a, b := slices.Clone(keys), slices.Clone(otherKeys)
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}
