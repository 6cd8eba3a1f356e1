// Package util provides helpers shared by the storage backends:
//   - functions: seeded FNV-1a key hashing used for shard selection
//   - statistics: summary statistics, shard distribution quality and a
//     SizeHistogram for reporting stored entry sizes without keeping every sample
package util
