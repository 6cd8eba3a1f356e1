// Package cmd implements the command-line interface for the eKV embedded
// key-value store. Every invocation loads the store from a snapshot file,
// runs one operation and writes the file back if the operation mutated it.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (set, get, del, query, backup, etc.)
//   - lock: Commands for locking operations (acquire, release)
//   - util: Shared utilities for flags, configuration and opening the store (internal use)
//
// See ekv -help for a list of all commands.
package cmd
