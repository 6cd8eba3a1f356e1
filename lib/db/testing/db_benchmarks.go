package testing

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/value"
)

// RunBackendBenchmarks runs all benchmarks for a backend implementation.
// Writes are issued from a single goroutine since not every backend allows concurrent writers.
func RunBackendBenchmarks(b *testing.B, name string, factory BackendFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Insert", func(b *testing.B) {
			benchmarkInsert(b, factory())
		})

		b.Run("InsertExisting", func(b *testing.B) {
			benchmarkInsertExisting(b, factory())
		})

		b.Run("InsertLargeValue", func(b *testing.B) {
			benchmarkInsertLargeValue(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Remove", func(b *testing.B) {
			benchmarkRemove(b, factory())
		})

		b.Run("Iterate", func(b *testing.B) {
			benchmarkIterate(b, factory())
		})

		b.Run("RemoveExpired", func(b *testing.B) {
			benchmarkRemoveExpired(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func prefill(b *testing.B, backend db.Backend, n int, ttl time.Duration) {
	b.Helper()
	now := time.Now()
	for i := 0; i < n; i++ {
		w := value.NewWrapped(value.String(fmt.Sprintf("test-value-%d", i)), ttl, now)
		if err := backend.Insert(fmt.Sprintf("test-key-%d", i), w); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
}

// Benchmark for Insert with new keys
func benchmarkInsert(b *testing.B, backend db.Backend) {
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := value.NewWrapped(value.Int(int64(i)), 0, now)
		_ = backend.Insert(fmt.Sprintf("test-key-%d", i), w)
	}
}

// Benchmark for Insert overwriting existing keys
func benchmarkInsertExisting(b *testing.B, backend db.Backend) {
	const numKeys = 1000
	prefill(b, backend, numKeys, 0)
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := value.NewWrapped(value.Int(int64(i)), 0, now)
		_ = backend.Insert(fmt.Sprintf("test-key-%d", i%numKeys), w)
	}
}

// Benchmark for Insert with large (64KB) string values
func benchmarkInsertLargeValue(b *testing.B, backend db.Backend) {
	payload := make([]byte, 64*1024)
	rand.New(rand.NewSource(1)).Read(payload)
	w := value.NewWrapped(value.String(string(payload)), 0, time.Now())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = backend.Insert(fmt.Sprintf("test-key-%d", i%128), w)
	}
}

// Parallel benchmark for Get
func benchmarkGet(b *testing.B, backend db.Backend) {
	const numKeys = 10000
	prefill(b, backend, numKeys, time.Hour)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			_, _, _ = backend.Get(fmt.Sprintf("test-key-%d", r.Intn(numKeys)))
		}
	})
}

func benchmarkRemove(b *testing.B, backend db.Backend) {
	prefill(b, backend, b.N, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = backend.Remove(fmt.Sprintf("test-key-%d", i))
	}
}

func benchmarkIterate(b *testing.B, backend db.Backend) {
	prefill(b, backend, 10000, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = backend.Iterate(func(string, value.Wrapped) bool {
			return true
		})
	}
}

// Benchmark for a sweep over a backend where half of the keys are expired
func benchmarkRemoveExpired(b *testing.B, backend db.Backend) {
	const numKeys = 10000
	past := time.Now().Add(-time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < numKeys; j++ {
			ttl := time.Duration(0)
			if j%2 == 0 {
				ttl = time.Minute
			}
			_ = backend.Insert(fmt.Sprintf("test-key-%d", j), value.NewWrapped(value.Int(int64(j)), ttl, past))
		}
		b.StartTimer()

		_, _ = backend.RemoveExpired(time.Now())
	}
}

// Benchmark for a mix of 70% reads, 20% writes and 10% removals
func benchmarkMixedUsage(b *testing.B, backend db.Backend) {
	const numKeys = 1000
	prefill(b, backend, numKeys, 0)
	r := rand.New(rand.NewSource(42))
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("test-key-%d", r.Intn(numKeys))
		switch op := r.Intn(10); {
		case op < 7:
			_, _, _ = backend.Get(key)
		case op < 9:
			_ = backend.Insert(key, value.NewWrapped(value.Int(int64(i)), 0, now))
		default:
			_, _, _ = backend.Remove(key)
		}
	}
}
