package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/value"
)

// BackendFactory creates a new, empty backend instance for one test
type BackendFactory func() db.Backend

// RunBackendTests runs the conformance test suite for a db.Backend implementation.
func RunBackendTests(t *testing.T, name string, factory BackendFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Insert&Get", func(t *testing.T) {
			testInsertGet(t, factory())
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory())
		})

		t.Run("Iterate", func(t *testing.T) {
			testIterate(t, factory())
		})

		t.Run("IterateStop", func(t *testing.T) {
			testIterateStop(t, factory())
		})

		t.Run("RemoveExpired", func(t *testing.T) {
			testRemoveExpired(t, factory())
		})

		t.Run("ManyExpiringKeys", func(t *testing.T) {
			testManyExpiringKeys(t, factory())
		})

		t.Run("Raw", func(t *testing.T) {
			testRaw(t, factory)
		})

		t.Run("CorruptedEntry", func(t *testing.T) {
			testCorruptedEntry(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func mustInsert(t testing.TB, backend db.Backend, key string, w value.Wrapped) {
	t.Helper()
	if err := backend.Insert(key, w); err != nil {
		t.Fatalf("Insert(%s) failed: %v", key, err)
	}
}

func mustGet(t testing.TB, backend db.Backend, key string) (value.Wrapped, bool) {
	t.Helper()
	w, ok, err := backend.Get(key)
	if err != nil {
		t.Fatalf("Get(%s) failed: %v", key, err)
	}
	return w, ok
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testInsertGet(t *testing.T, backend db.Backend) {
	testKey := "test-key"
	testValue1 := value.NewWrapped(value.String("test-value1"), 0, testEpoch)
	testValue2 := value.NewWrapped(value.Int(2), time.Minute, testEpoch)

	mustInsert(t, backend, testKey, testValue1)

	result, exists := mustGet(t, backend, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Insert", testKey)
	}
	if !result.Equal(testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// overwrite replaces value and expiry
	mustInsert(t, backend, testKey, testValue2)

	result, exists = mustGet(t, backend, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !result.Equal(testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}
	if backend.Len() != 1 {
		t.Errorf("Expected Len()=1 after overwrite, got %d", backend.Len())
	}

	_, exists = mustGet(t, backend, "nonexistent-key")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// an expired value is still returned
	expired := value.NewWrapped(value.Bool(true), time.Nanosecond, testEpoch.Add(-time.Hour))
	mustInsert(t, backend, "expired", expired)
	result, exists = mustGet(t, backend, "expired")
	if !exists || !result.Equal(expired) {
		t.Errorf("Get must not filter expired values, got %s (exists=%v)", result, exists)
	}
}

func testRemove(t *testing.T, backend db.Backend) {
	w := value.NewWrapped(value.Float(1.5), 0, testEpoch)
	mustInsert(t, backend, "a", w)

	old, removed, err := backend.Remove("a")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatalf("Expected Remove to report removal")
	}
	if !old.Equal(w) {
		t.Errorf("Expected removed value %s, got %s", w, old)
	}

	if _, exists := mustGet(t, backend, "a"); exists {
		t.Errorf("Key should not exist after Remove")
	}

	_, removed, err = backend.Remove("a")
	if err != nil || removed {
		t.Errorf("Removing an absent key should be a no-op, got removed=%v err=%v", removed, err)
	}
	if backend.Len() != 0 {
		t.Errorf("Expected Len()=0, got %d", backend.Len())
	}
}

func testIterate(t *testing.T, backend db.Backend) {
	const numKeys = 100
	for i := 0; i < numKeys; i++ {
		mustInsert(t, backend, fmt.Sprintf("key-%03d", i), value.NewWrapped(value.Int(int64(i)), 0, testEpoch))
	}

	collect := func() []string {
		var keys []string
		err := backend.Iterate(func(key string, w value.Wrapped) bool {
			want := fmt.Sprintf("key-%03d", mustAsInt(t, w))
			if key != want {
				t.Errorf("Iterate yielded %s for value of %s", key, want)
			}
			keys = append(keys, key)
			return true
		})
		if err != nil {
			t.Fatalf("Iterate failed: %v", err)
		}
		return keys
	}

	first := collect()
	if len(first) != numKeys {
		t.Fatalf("Expected %d keys, got %d", numKeys, len(first))
	}

	seen := make(map[string]bool, numKeys)
	for _, k := range first {
		if seen[k] {
			t.Errorf("Iterate yielded %s twice", k)
		}
		seen[k] = true
	}

	if backend.Kind() == db.KindOrdered {
		for i := 1; i < len(first); i++ {
			if first[i-1] >= first[i] {
				t.Fatalf("Ordered backend must iterate ascending, got %s before %s", first[i-1], first[i])
			}
		}
	}

	// iteration is restartable
	if second := collect(); len(second) != numKeys {
		t.Errorf("Second iteration yielded %d keys, want %d", len(second), numKeys)
	}
}

func mustAsInt(t testing.TB, w value.Wrapped) int64 {
	t.Helper()
	i, ok := w.Value.AsInt()
	if !ok {
		t.Fatalf("Expected int value, got %s", w.Value)
	}
	return i
}

func testIterateStop(t *testing.T, backend db.Backend) {
	for i := 0; i < 10; i++ {
		mustInsert(t, backend, fmt.Sprintf("k%d", i), value.NewWrapped(value.Null(), 0, testEpoch))
	}

	visited := 0
	err := backend.Iterate(func(string, value.Wrapped) bool {
		visited++
		return visited < 3
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	if visited != 3 {
		t.Errorf("Iterate should stop when fn returns false, visited %d", visited)
	}
}

func testRemoveExpired(t *testing.T, backend db.Backend) {
	now := testEpoch.Add(time.Hour)

	mustInsert(t, backend, "forever", value.NewWrapped(value.Int(1), 0, testEpoch))
	mustInsert(t, backend, "expired", value.NewWrapped(value.Int(2), time.Minute, testEpoch))
	mustInsert(t, backend, "alive", value.NewWrapped(value.Int(3), 2*time.Hour, testEpoch))
	// exactly at the boundary is not expired yet
	mustInsert(t, backend, "boundary", value.NewWrapped(value.Int(4), time.Hour, testEpoch))

	removed, err := backend.RemoveExpired(now)
	if err != nil {
		t.Fatalf("RemoveExpired failed: %v", err)
	}
	if len(removed) != 1 || removed[0].Key != "expired" {
		t.Fatalf("Expected only 'expired' to be removed, got %v", removed)
	}
	if v, _ := removed[0].Wrapped.Value.AsInt(); v != 2 {
		t.Errorf("Removed entry should carry its value, got %s", removed[0].Wrapped)
	}

	for _, key := range []string{"forever", "alive", "boundary"} {
		if _, exists := mustGet(t, backend, key); !exists {
			t.Errorf("Key %s should survive the sweep", key)
		}
	}
	if _, exists := mustGet(t, backend, "expired"); exists {
		t.Errorf("Expired key should have been removed")
	}

	// values without expiry never go away, however far the clock moves
	removed, err = backend.RemoveExpired(now.Add(100 * 365 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("RemoveExpired failed: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("Expected 2 removals, got %d", len(removed))
	}
	if _, exists := mustGet(t, backend, "forever"); !exists {
		t.Errorf("Key without expiry must never be removed")
	}
}

func testManyExpiringKeys(t *testing.T, backend db.Backend) {
	const numKeys = 1000
	for i := 0; i < numKeys; i++ {
		ttl := time.Duration(i+1) * time.Second
		mustInsert(t, backend, fmt.Sprintf("key-%d", i), value.NewWrapped(value.Int(int64(i)), ttl, testEpoch))
	}

	// keys with ttl <= 500s are expired strictly after testEpoch+500s
	removed, err := backend.RemoveExpired(testEpoch.Add(500*time.Second + time.Nanosecond))
	if err != nil {
		t.Fatalf("RemoveExpired failed: %v", err)
	}
	if len(removed) != 500 {
		t.Errorf("Expected 500 removed keys, got %d", len(removed))
	}
	if backend.Len() != numKeys-500 {
		t.Errorf("Expected %d remaining keys, got %d", numKeys-500, backend.Len())
	}
	for _, e := range removed {
		if i := mustAsInt(t, e.Wrapped); i >= 500 {
			t.Errorf("Key %s should not have expired", e.Key)
		}
	}
}

func testRaw(t *testing.T, factory BackendFactory) {
	source := factory()
	for i := 0; i < 50; i++ {
		mustInsert(t, source, fmt.Sprintf("raw-%d", i), value.NewWrapped(value.String(fmt.Sprintf("v%d", i)), time.Duration(i)*time.Second, testEpoch))
	}

	target := factory()
	source.RangeRaw(func(key string, data []byte) bool {
		target.InsertRaw(key, data)
		return true
	})

	if target.Len() != source.Len() {
		t.Fatalf("Expected %d raw entries, got %d", source.Len(), target.Len())
	}
	err := source.Iterate(func(key string, want value.Wrapped) bool {
		got, exists := mustGet(t, target, key)
		if !exists || !got.Equal(want) {
			t.Errorf("Raw copy of %s: got %s, want %s", key, got, want)
		}
		return true
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}

	// corrupted raw bytes surface as decode errors
	target.InsertRaw("corrupt", []byte{0xde, 0xad, 0xbe, 0xef})
	if _, _, err := target.Get("corrupt"); err == nil {
		t.Errorf("Get of corrupted data should fail")
	}
}

func testCorruptedEntry(t *testing.T, backend db.Backend) {
	for i := 0; i < 100; i++ {
		mustInsert(t, backend, fmt.Sprintf("exp-%d", i), value.NewWrapped(value.Int(int64(i)), time.Second, testEpoch))
	}
	backend.InsertRaw("corrupt", []byte{0xff})

	// a sweep that hits a corrupted entry removes nothing
	removed, err := backend.RemoveExpired(testEpoch.Add(time.Hour))
	if err == nil {
		t.Fatalf("RemoveExpired over a corrupted entry should fail")
	}
	if len(removed) != 0 {
		t.Errorf("Failed sweep must not report removals, got %d", len(removed))
	}
	if backend.Len() != 101 {
		t.Errorf("Failed sweep must not delete entries, %d left", backend.Len())
	}

	if err := backend.Iterate(func(string, value.Wrapped) bool { return true }); err == nil {
		t.Errorf("Iterate over a corrupted entry should fail")
	}

	// Remove deletes the entry and reports the corruption
	_, loaded, err := backend.Remove("corrupt")
	if err == nil || !loaded {
		t.Errorf("Remove of a corrupted entry should report loaded=true and an error, got %v, %v", loaded, err)
	}
	if backend.Len() != 100 {
		t.Errorf("Corrupted entry should be gone after Remove, %d left", backend.Len())
	}

	removed, err = backend.RemoveExpired(testEpoch.Add(time.Hour))
	if err != nil {
		t.Fatalf("RemoveExpired failed: %v", err)
	}
	if len(removed) != 100 {
		t.Errorf("Expected 100 removed keys, got %d", len(removed))
	}
}

func testEdgeCases(t *testing.T, backend db.Backend) {
	if backend.Codec() == nil {
		t.Fatalf("Backend must expose its codec")
	}
	if !backend.Kind().Valid() {
		t.Errorf("Backend reports invalid kind %v", backend.Kind())
	}

	// empty key
	mustInsert(t, backend, "", value.NewWrapped(value.String("empty-key"), 0, testEpoch))
	if result, exists := mustGet(t, backend, ""); !exists || !result.Value.Equal(value.String("empty-key")) {
		t.Errorf("Empty key should be storable, got %s", result)
	}

	// large value
	large := make([]byte, 1024*1024)
	for i := range large {
		large[i] = byte('a' + i%26)
	}
	mustInsert(t, backend, "large", value.NewWrapped(value.String(string(large)), 0, testEpoch))
	result, exists := mustGet(t, backend, "large")
	if s, _ := result.Value.AsString(); !exists || s != string(large) {
		t.Errorf("Large value did not round trip")
	}

	// all value kinds
	kinds := []value.Value{value.Null(), value.Bool(false), value.Int(-1), value.Float(-0.5), value.String("")}
	for i, v := range kinds {
		key := fmt.Sprintf("kind-%d", i)
		mustInsert(t, backend, key, value.NewWrapped(v, 0, testEpoch))
		if got, _ := mustGet(t, backend, key); got.Value.Kind() != v.Kind() || !got.Value.Equal(v) {
			t.Errorf("Value %s came back as %s", v, got.Value)
		}
	}
}
