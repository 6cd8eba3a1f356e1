package unordered

import (
	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/db/engines/unordered/internal"
	"github.com/ValentinKolb/eKV/lib/db/util"
	"github.com/ValentinKolb/eKV/lib/value"
	"runtime"
	"time"
)

// --------------------------------------------------------------------------
// Core structure
// --------------------------------------------------------------------------

// unorderedImpl is a hash map backend sharded over several concurrent maps
type unorderedImpl struct {
	seed   uint64            // Seed for the hash function
	shards []*internal.Shard // Array of shards
	codec  codec.Codec
}

// Options configures the unordered backend
type Options struct {
	NumShards int // Number of shards (0 = number of CPUs)
}

// DefaultOptions returns the default options
func DefaultOptions() *Options {
	return &Options{
		NumShards: runtime.NumCPU(),
	}
}

// --------------------------------------------------------------------------
// Initialization
// --------------------------------------------------------------------------

// New creates an empty unordered backend using the codec c (nil = codec.Default())
// and the given options (nil = DefaultOptions())
func New(c codec.Codec, opts *Options) db.Backend {
	if c == nil {
		c = codec.Default()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = runtime.NumCPU()
	}

	shards := make([]*internal.Shard, opts.NumShards)
	for i := range shards {
		shards[i] = internal.NewShard()
	}

	return &unorderedImpl{
		seed:   util.GenerateSeed(),
		shards: shards,
		codec:  c,
	}
}

// Factory is a db.Factory for the unordered backend with default options
func Factory(c codec.Codec) db.Backend {
	return New(c, nil)
}

// shard returns the shard responsible for key
func (u *unorderedImpl) shard(key string) *internal.Shard {
	return internal.GetShard(util.HashString(key, u.seed), u.shards)
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Insert compresses w and stores it under key, overwriting any prior entry.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (u *unorderedImpl) Insert(key string, w value.Wrapped) error {
	data, err := u.codec.Compress(w)
	if err != nil {
		return err
	}
	u.shard(key).Data.Store(key, data)
	return nil
}

// Remove deletes key and returns the decompressed prior value.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (u *unorderedImpl) Remove(key string) (value.Wrapped, bool, error) {
	data, loaded := u.shard(key).Data.LoadAndDelete(key)
	if !loaded {
		return value.Wrapped{}, false, nil
	}
	w, err := u.codec.Decompress(data)
	if err != nil {
		// the entry is gone either way, report the corruption
		return value.Wrapped{}, true, err
	}
	return w, true, nil
}

// RemoveExpired removes every entry expired at now. All shards are scanned before
// anything is deleted, so a corrupted entry aborts the sweep without removing anything.
// The sweep decompresses every entry once, callers must not run it concurrently with writes.
func (u *unorderedImpl) RemoveExpired(now time.Time) ([]db.Entry, error) {
	var (
		expired = make([][]db.Entry, len(u.shards))
		count   int
		err     error
	)
	for i, shard := range u.shards {
		shard.Data.Range(func(key string, data []byte) bool {
			w, decErr := u.codec.Decompress(data)
			if decErr != nil {
				err = decErr
				return false
			}
			if w.IsExpiredAt(now) {
				expired[i] = append(expired[i], db.Entry{Key: key, Wrapped: w})
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		count += len(expired[i])
	}

	// delete after the pass so the maps are not mutated while ranging
	removed := make([]db.Entry, 0, count)
	for i, shard := range u.shards {
		for _, e := range expired[i] {
			shard.Data.Delete(e.Key)
		}
		removed = append(removed, expired[i]...)
	}
	return removed, nil
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get returns a decompressed copy of the value stored for key, expired or not.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (u *unorderedImpl) Get(key string) (value.Wrapped, bool, error) {
	data, ok := u.shard(key).Data.Load(key)
	if !ok {
		return value.Wrapped{}, false, nil
	}
	w, err := u.codec.Decompress(data)
	if err != nil {
		return value.Wrapped{}, false, err
	}
	return w, true, nil
}

// Iterate decompresses every entry shard by shard.
// The order is unspecified and only stable within one call.
func (u *unorderedImpl) Iterate(fn func(key string, w value.Wrapped) bool) error {
	var err error
	for _, shard := range u.shards {
		cont := true
		shard.Data.Range(func(key string, data []byte) bool {
			w, decErr := u.codec.Decompress(data)
			if decErr != nil {
				err = decErr
				cont = false
				return false
			}
			cont = fn(key, w)
			return cont
		})
		if !cont {
			break
		}
	}
	return err
}

// Len returns the number of entries over all shards
func (u *unorderedImpl) Len() int {
	size := 0
	for _, shard := range u.shards {
		size += shard.Data.Size()
	}
	return size
}

// --------------------------------------------------------------------------
// Raw Access
// --------------------------------------------------------------------------

func (u *unorderedImpl) RangeRaw(fn func(key string, data []byte) bool) {
	for _, shard := range u.shards {
		cont := true
		shard.Data.Range(func(key string, data []byte) bool {
			cont = fn(key, data)
			return cont
		})
		if !cont {
			return
		}
	}
}

func (u *unorderedImpl) InsertRaw(key string, data []byte) {
	u.shard(key).Data.Store(key, data)
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

func (u *unorderedImpl) Kind() db.Kind {
	return db.KindUnordered
}

func (u *unorderedImpl) Codec() codec.Codec {
	return u.codec
}

// ShardSizes returns the number of entries per shard. Used for distribution statistics.
func (u *unorderedImpl) ShardSizes() []float64 {
	sizes := make([]float64, len(u.shards))
	for i, shard := range u.shards {
		sizes[i] = float64(shard.Data.Size())
	}
	return sizes
}
