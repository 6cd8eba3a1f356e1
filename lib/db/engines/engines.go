// Package engines maps a db.Kind to its backend implementation.
package engines

import (
	"fmt"
	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/db/engines/ordered"
	"github.com/ValentinKolb/eKV/lib/db/engines/unordered"
)

// FactoryFor returns the backend factory for kind.
// An unknown kind is a configuration error.
func FactoryFor(kind db.Kind) (db.Factory, error) {
	switch kind {
	case db.KindOrdered:
		return ordered.Factory, nil
	case db.KindUnordered:
		return unordered.Factory, nil
	default:
		return nil, fmt.Errorf("unsupported backend kind %s", kind)
	}
}

// New creates an empty backend of the given kind
func New(kind db.Kind, c codec.Codec) (db.Backend, error) {
	factory, err := FactoryFor(kind)
	if err != nil {
		return nil, err
	}
	return factory(c), nil
}
