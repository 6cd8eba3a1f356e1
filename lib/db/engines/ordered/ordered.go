package ordered

import (
	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/value"
	"github.com/google/btree"
	"time"
)

// defaultDegree is the b-tree degree (max 2*degree-1 items per node)
const defaultDegree = 32

// item is a b-tree element ordered by key
type item struct {
	key  string
	data []byte
}

func lessItem(a, b item) bool {
	return a.key < b.key
}

// orderedImpl keeps the compressed entries in a b-tree sorted by key
type orderedImpl struct {
	tree  *btree.BTreeG[item]
	codec codec.Codec
}

// New creates an empty ordered backend using the codec c (nil = codec.Default())
//
// Thread-safety: concurrent reads are safe, writes must be serialized by the caller.
func New(c codec.Codec) db.Backend {
	if c == nil {
		c = codec.Default()
	}
	return &orderedImpl{
		tree:  btree.NewG[item](defaultDegree, lessItem),
		codec: c,
	}
}

// Factory is a db.Factory for the ordered backend
func Factory(c codec.Codec) db.Backend {
	return New(c)
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

func (o *orderedImpl) Insert(key string, w value.Wrapped) error {
	data, err := o.codec.Compress(w)
	if err != nil {
		return err
	}
	o.tree.ReplaceOrInsert(item{key: key, data: data})
	return nil
}

func (o *orderedImpl) Remove(key string) (value.Wrapped, bool, error) {
	old, loaded := o.tree.Delete(item{key: key})
	if !loaded {
		return value.Wrapped{}, false, nil
	}
	w, err := o.codec.Decompress(old.data)
	if err != nil {
		return value.Wrapped{}, true, err
	}
	return w, true, nil
}

// RemoveExpired collects the expired keys in one ascending pass and deletes them afterward
func (o *orderedImpl) RemoveExpired(now time.Time) ([]db.Entry, error) {
	var (
		expired []db.Entry
		err     error
	)
	o.tree.Ascend(func(it item) bool {
		w, decErr := o.codec.Decompress(it.data)
		if decErr != nil {
			err = decErr
			return false
		}
		if w.IsExpiredAt(now) {
			expired = append(expired, db.Entry{Key: it.key, Wrapped: w})
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	for _, e := range expired {
		o.tree.Delete(item{key: e.Key})
	}
	return expired, nil
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

func (o *orderedImpl) Get(key string) (value.Wrapped, bool, error) {
	it, ok := o.tree.Get(item{key: key})
	if !ok {
		return value.Wrapped{}, false, nil
	}
	w, err := o.codec.Decompress(it.data)
	if err != nil {
		return value.Wrapped{}, false, err
	}
	return w, true, nil
}

// Iterate decompresses the entries in ascending key order
func (o *orderedImpl) Iterate(fn func(key string, w value.Wrapped) bool) error {
	var err error
	o.tree.Ascend(func(it item) bool {
		w, decErr := o.codec.Decompress(it.data)
		if decErr != nil {
			err = decErr
			return false
		}
		return fn(it.key, w)
	})
	return err
}

func (o *orderedImpl) Len() int {
	return o.tree.Len()
}

// --------------------------------------------------------------------------
// Raw Access
// --------------------------------------------------------------------------

func (o *orderedImpl) RangeRaw(fn func(key string, data []byte) bool) {
	o.tree.Ascend(func(it item) bool {
		return fn(it.key, it.data)
	})
}

func (o *orderedImpl) InsertRaw(key string, data []byte) {
	o.tree.ReplaceOrInsert(item{key: key, data: data})
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

func (o *orderedImpl) Kind() db.Kind {
	return db.KindOrdered
}

func (o *orderedImpl) Codec() codec.Codec {
	return o.codec
}
