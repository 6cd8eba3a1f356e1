package index

import (
	"slices"
	"testing"

	"github.com/ValentinKolb/eKV/lib/value"
)

func TestInsertLookup(t *testing.T) {
	idx := New()
	idx.Insert("a", value.Int(5))
	idx.Insert("b", value.Int(5))
	idx.Insert("a", value.Int(5)) // duplicate
	idx.Insert("c", value.String("5"))

	keys, ok := idx.Lookup(value.Int(5))
	if !ok || !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("Lookup(Int(5)) = %v, %v; want [a b], true", keys, ok)
	}

	keys, ok = idx.Lookup(value.String("5"))
	if !ok || !slices.Equal(keys, []string{"c"}) {
		t.Errorf("Int and String values must use separate buckets, got %v", keys)
	}

	if _, ok := idx.Lookup(value.Bool(true)); ok {
		t.Errorf("Lookup of an absent value should report false")
	}

	// Lookup returns a copy
	keys, _ = idx.Lookup(value.Int(5))
	keys[0] = "mutated"
	if again, _ := idx.Lookup(value.Int(5)); again[0] != "a" {
		t.Errorf("Lookup must return a copy")
	}
}

func TestRemoveDropsEmptyBuckets(t *testing.T) {
	idx := New()
	idx.Insert("a", value.Float(1))
	idx.Insert("b", value.Float(1))

	idx.Remove("a", value.Float(1))
	if keys, _ := idx.Lookup(value.Float(1)); !slices.Equal(keys, []string{"b"}) {
		t.Errorf("expected [b], got %v", keys)
	}

	idx.Remove("b", value.Float(1))
	if _, ok := idx.Lookup(value.Float(1)); ok {
		t.Errorf("empty bucket must be deleted")
	}
	if idx.Len() != 0 {
		t.Errorf("expected no buckets, got %d", idx.Len())
	}

	// removing unknown pairs is a no-op
	idx.Remove("x", value.Null())
	idx.Insert("y", value.Null())
	idx.Remove("x", value.Null())
	if keys, _ := idx.Lookup(value.Null()); !slices.Equal(keys, []string{"y"}) {
		t.Errorf("expected [y], got %v", keys)
	}
}

func TestBucketsAndEqual(t *testing.T) {
	a := New()
	a.Insert("k1", value.Bool(true))
	a.Insert("k2", value.Bool(true))
	a.Insert("k3", value.Int(1))

	b := FromBuckets(a.Buckets())
	if !a.Equal(b) || !b.Equal(a) {
		t.Fatalf("index rebuilt from its buckets should be equal")
	}

	// order within a bucket does not matter
	c := New()
	c.Insert("k3", value.Int(1))
	c.Insert("k2", value.Bool(true))
	c.Insert("k1", value.Bool(true))
	if !a.Equal(c) {
		t.Errorf("indexes with the same key sets should be equal")
	}

	c.Remove("k1", value.Bool(true))
	if a.Equal(c) {
		t.Errorf("indexes with different key sets must not be equal")
	}

	snapshot := a.Buckets()
	snapshot[value.Int(1).String()][0] = "changed"
	if keys, _ := a.Lookup(value.Int(1)); keys[0] != "k3" {
		t.Errorf("Buckets must return a deep copy")
	}
}

func TestRemoveKey(t *testing.T) {
	idx := New()
	idx.Insert("k", value.Int(1))
	idx.Insert("other", value.Int(1))
	idx.Insert("k", value.String("x"))

	idx.RemoveKey("k")

	if keys, _ := idx.Lookup(value.Int(1)); !slices.Equal(keys, []string{"other"}) {
		t.Errorf("expected [other], got %v", keys)
	}
	if _, ok := idx.Lookup(value.String("x")); ok {
		t.Errorf("bucket emptied by RemoveKey must be deleted")
	}
}
