package engines

import (
	"testing"

	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
)

func TestNew(t *testing.T) {
	for _, kind := range []db.Kind{db.KindOrdered, db.KindUnordered} {
		backend, err := New(kind, codec.Default())
		if err != nil {
			t.Fatalf("New(%s) failed: %v", kind, err)
		}
		if backend.Kind() != kind {
			t.Errorf("New(%s) returned a %s backend", kind, backend.Kind())
		}
	}

	if _, err := New(db.Kind(0), codec.Default()); err == nil {
		t.Errorf("New with an invalid kind should fail")
	}
}
