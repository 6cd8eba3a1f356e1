// Package testing provides standardised tests and benchmarks for storage
// backends that satisfy the db.Backend interface.
//
// The package contains:
//   - RunBackendTests: a conformance suite for the Backend contract (overwrite,
//     removal, iteration order and restartability, expiration sweeps, raw access)
//   - RunBackendBenchmarks: throughput benchmarks for the common operations
//
// Example usage:
//
//	factory := func() db.Backend {
//		return mybackend.New(codec.Default())
//	}
//
//	dbtesting.RunBackendTests(t, "MyBackend", factory)
//	dbtesting.RunBackendBenchmarks(b, "MyBackend", factory)
package testing
