// Package db defines the storage contract shared by all backends.
//
// A Backend owns the mapping from key to the compressed bytes of a
// value.Wrapped. Storing compressed bytes instead of live values keeps the
// in-memory footprint and the snapshot path uniform across backends, at the
// price of one decompression per read.
//
// Key Components:
//
//   - Backend Interface: insert, get, remove, iterate and expiration sweep.
//     Get and Iterate return owned, freshly decompressed values, never
//     references into a decompression buffer. Get does not filter expired
//     entries; deciding what to do with them is up to the caller.
//
//   - Kind: the closed set of backend variants (ordered, unordered). Selecting
//     an unknown kind is a construction time error, see the engines package.
//
// Implementations:
//
//   - engines/ordered: a b-tree (github.com/google/btree), iterates in
//     ascending key order.
//   - engines/unordered: a concurrent hash map (github.com/puzpuzpuz/xsync),
//     iteration order is unspecified and only stable within one pass.
//
// The testing package (github.com/ValentinKolb/eKV/lib/db/testing) provides
// the shared test suite and benchmarks every backend must pass identically.
package db
