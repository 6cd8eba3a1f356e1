// Package unordered implements the unordered storage backend as a set of
// concurrent hash maps (github.com/puzpuzpuz/xsync).
//
// Sharding Strategy: keys are hashed with a per-instance seed (FNV-1a, see
// lib/db/util) and the higher bits of the hash select the shard. Each shard is
// an xsync.MapOf of key -> compressed bytes. The number of shards defaults to
// the number of CPUs.
//
// Iteration visits the shards one after another and each shard in map order,
// so the order is unspecified and only stable within a single pass. Expiration
// sweeps collect the expired keys of a shard first and delete them afterward,
// so a shard is never mutated while it is being ranged over.
package unordered
