// Package index implements the secondary value index: a mapping from the
// canonical string form of a value (value.Value.String) to the ordered set of
// keys currently holding that value.
//
// The index does not know about storage. Keeping it consistent is the job of
// the store, which issues the matching index mutation for every storage
// mutation while holding both locks.
package index
