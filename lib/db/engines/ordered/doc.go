// Package ordered implements the ordered storage backend on top of a b-tree
// (github.com/google/btree). Entries are kept sorted by key, so Iterate and
// the expiration sweep visit keys in ascending order.
//
// Every entry holds the compressed bytes produced by the backend's codec.
// Reads decompress into a fresh value.Wrapped owned by the caller.
//
// The tree is not internally synchronized: concurrent reads are safe, writes
// must be serialized by the caller (the store holds a write lock for that).
package ordered
