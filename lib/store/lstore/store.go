package lstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/db/engines"
	"github.com/ValentinKolb/eKV/lib/db/util"
	"github.com/ValentinKolb/eKV/lib/index"
	"github.com/ValentinKolb/eKV/lib/query"
	"github.com/ValentinKolb/eKV/lib/store"
	"github.com/ValentinKolb/eKV/lib/value"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("store")

// backupTimeFormat names backups with second granularity. Two backups
// written in the same second get the same name and the later one wins.
const backupTimeFormat = "20060102_150405"

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a Store
type Options struct {
	Backend       db.Kind          // Storage backend (0 = db.KindOrdered)
	Codec         codec.Config     // Serializer and compression of stored entries (empty = codec.DefaultConfig())
	SweepInterval time.Duration    // Interval of the background expiration sweep (0 = no background sweep)
	Clock         func() time.Time // Time source for expiration (nil = time.Now)
	OnRollback    func()           // Called once per transaction rollback (optional)
}

// DefaultOptions returns an ordered backend with the default codec and no background sweep
func DefaultOptions() Options {
	return Options{
		Backend: db.KindOrdered,
		Codec:   codec.DefaultConfig(),
	}
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is the local implementation of store.IStore.
//
// Locking: gate is held shared by every direct call and exclusively by an open
// transaction. Below it, storageMu guards the backend and indexMu the index.
// When both are needed storageMu is always acquired first.
type Store struct {
	gate sync.RWMutex

	storageMu sync.RWMutex
	backend   db.Backend

	indexMu sync.RWMutex
	idx     *index.Index

	opts    Options
	now     func() time.Time
	metrics *storeMetrics
	sweeper *sweeper
	closed  atomic.Bool
}

// New creates an empty store. An unsupported backend kind or codec is a RetCInvalidConfig error.
func New(opts Options) (*Store, error) {
	if opts.Backend == 0 {
		opts.Backend = db.KindOrdered
	}
	c, err := codec.New(opts.Codec)
	if err != nil {
		return nil, store.WrapError(store.RetCInvalidConfig, "invalid codec", err)
	}
	backend, err := engines.New(opts.Backend, c)
	if err != nil {
		return nil, store.WrapError(store.RetCInvalidConfig, "invalid backend", err)
	}
	return newStore(opts, backend, index.New()), nil
}

// Load creates a store from the snapshot at path. Backend kind and codec are
// taken from the snapshot, the remaining options from opts.
func Load(path string, opts Options) (*Store, error) {
	state, err := loadState(path)
	if err != nil {
		return nil, err
	}
	opts.Backend = state.backend.Kind()
	opts.Codec = state.backend.Codec().Config()

	log.Infof("loaded snapshot %s (%d entries, %s, %s)", path, state.backend.Len(), opts.Backend, opts.Codec)
	return newStore(opts, state.backend, state.idx), nil
}

func newStore(opts Options, backend db.Backend, idx *index.Index) *Store {
	s := &Store{
		backend: backend,
		idx:     idx,
		opts:    opts,
		now:     opts.Clock,
		metrics: newStoreMetrics(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.SweepInterval > 0 {
		s.sweeper = startSweeper(opts.SweepInterval, s.backgroundSweep)
	}
	return s
}

func loadState(path string) (*snapshotState, error) {
	state, err := readSnapshotFile(path)
	switch {
	case err == nil:
		return state, nil
	case errors.Is(err, errSnapshotFormat):
		return nil, store.WrapError(store.RetCSerializationError, fmt.Sprintf("cannot decode snapshot %s", path), err)
	default:
		return nil, store.WrapError(store.RetCIOError, fmt.Sprintf("cannot read snapshot %s", path), err)
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Insert(key string, v value.Value, ttl time.Duration) error {
	s.gate.RLock()
	defer s.gate.RUnlock()
	_, _, err := s.insert(key, value.NewWrapped(v, ttl, s.now()))
	return err
}

func (s *Store) Get(key string) (value.Value, bool, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()
	return s.get(key)
}

func (s *Store) Remove(key string) error {
	s.gate.RLock()
	defer s.gate.RUnlock()
	_, _, err := s.remove(key)
	return err
}

func (s *Store) Execute(q *query.Query) ([]value.Value, error) {
	if q == nil {
		q = query.New()
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	start := time.Now()
	defer s.metrics.queryTimer.UpdateSince(start)
	s.metrics.queries.Inc()

	s.storageMu.RLock()
	defer s.storageMu.RUnlock()

	results, err := q.Execute(s.backend)
	if err != nil {
		if errors.Is(err, query.ErrMalformed) {
			return nil, store.WrapError(store.RetCQueryError, "invalid query", err)
		}
		return nil, store.WrapError(store.RetCStorageError, "query failed", err)
	}
	return results, nil
}

func (s *Store) Lookup(v value.Value) ([]string, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	keys, _ := s.idx.Lookup(v)
	return keys, nil
}

func (s *Store) RemoveExpired() (int, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	start := time.Now()
	defer s.metrics.sweepTimer.UpdateSince(start)

	s.storageMu.Lock()
	defer s.storageMu.Unlock()
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	removed, err := s.backend.RemoveExpired(s.now())
	// entries removed before a failure are gone from storage, keep the index in step
	for _, e := range removed {
		s.idx.Remove(e.Key, e.Wrapped.Value)
	}
	s.metrics.swept.Add(len(removed))

	if err != nil {
		return len(removed), store.WrapError(store.RetCStorageError, "expiration sweep failed", err)
	}
	if len(removed) > 0 {
		log.Debugf("swept %d expired entries", len(removed))
	}
	return len(removed), nil
}

func (s *Store) Save(path string) error {
	s.gate.RLock()
	defer s.gate.RUnlock()
	return s.save(path)
}

func (s *Store) Backup(dir string) (string, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", store.WrapError(store.RetCIOError, fmt.Sprintf("cannot create backup directory %s", dir), err)
	}
	path := filepath.Join(dir, "backup_"+s.now().Format(backupTimeFormat)+".db")
	if err := s.save(path); err != nil {
		return "", err
	}
	log.Infof("wrote backup %s", path)
	return path, nil
}

func (s *Store) Restore(path string) error {
	state, err := loadState(path)
	if err != nil {
		return err
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	s.storageMu.Lock()
	defer s.storageMu.Unlock()
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	s.backend = state.backend
	s.idx = state.idx
	log.Infof("restored snapshot %s (%d entries)", path, state.backend.Len())
	return nil
}

func (s *Store) Begin() store.ITransaction {
	s.gate.Lock()
	return &transaction{store: s}
}

func (s *Store) Info() store.Info {
	info := store.Info{
		SweepInterval: s.opts.SweepInterval,
		Counters:      s.metrics.counters(),
		Timers:        s.metrics.timers(),
	}

	s.storageMu.RLock()
	info.Backend = s.backend.Kind().String()
	info.Codec = s.backend.Codec().Config().String()
	info.Entries = s.backend.Len()

	histogram := util.NewSizeHistogram()
	s.backend.RangeRaw(func(key string, data []byte) bool {
		histogram.AddSample(len(key) + len(data))
		return true
	})
	if sharded, ok := s.backend.(interface{ ShardSizes() []float64 }); ok {
		dist := util.NewDistributionStats(sharded.ShardSizes())
		info.ShardDistribution = &dist
	}
	s.storageMu.RUnlock()

	info.StoredBytes = histogram.Total()
	info.AvgEntrySize = histogram.AverageSize()
	info.MedianEntrySize = histogram.PercentileEstimate(50)
	info.P99EntrySize = histogram.PercentileEstimate(99)

	s.indexMu.RLock()
	info.IndexBuckets = s.idx.Len()
	s.indexMu.RUnlock()

	return info
}

// Close stops the background sweeper. It must not be called while a
// transaction is open, since a pending sweep waits for that transaction.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.sweeper != nil {
		s.sweeper.stop()
	}
	s.metrics.stop()
	return nil
}

// WriteMetrics writes the operation counters in Prometheus text format
func (s *Store) WriteMetrics(w io.Writer) {
	s.metrics.writePrometheus(w)
}

// --------------------------------------------------------------------------
// Unguarded operations (shared by direct calls and transactions)
// --------------------------------------------------------------------------

// insert stores w under key and returns the previous value.
// The caller must hold the gate (shared or exclusive).
func (s *Store) insert(key string, w value.Wrapped) (value.Wrapped, bool, error) {
	s.storageMu.Lock()
	defer s.storageMu.Unlock()
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	old, existed, err := s.backend.Get(key)
	if err != nil {
		return value.Wrapped{}, false, store.WrapError(store.RetCStorageError, fmt.Sprintf("cannot decode current value of %q", key), err)
	}
	if err := s.backend.Insert(key, w); err != nil {
		return value.Wrapped{}, false, store.WrapError(store.RetCStorageError, fmt.Sprintf("cannot encode value of %q", key), err)
	}

	if existed {
		s.idx.Remove(key, old.Value)
	}
	s.idx.Insert(key, w.Value)
	s.metrics.inserts.Inc()
	return old, existed, nil
}

// remove deletes key and returns the removed value.
// The caller must hold the gate (shared or exclusive).
func (s *Store) remove(key string) (value.Wrapped, bool, error) {
	s.storageMu.Lock()
	defer s.storageMu.Unlock()
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	old, existed, err := s.backend.Remove(key)
	if err != nil {
		// the entry is gone but its value is unknown
		s.idx.RemoveKey(key)
		return value.Wrapped{}, false, store.WrapError(store.RetCStorageError, fmt.Sprintf("removed corrupted entry %q", key), err)
	}
	if existed {
		s.idx.Remove(key, old.Value)
		s.metrics.removes.Inc()
	}
	return old, existed, nil
}

// get returns the stored value of key without expiration filtering.
// The caller must hold the gate (shared or exclusive).
func (s *Store) get(key string) (value.Value, bool, error) {
	w, ok, err := s.getWrapped(key)
	return w.Value, ok, err
}

// getWrapped is get including the expiration instant
func (s *Store) getWrapped(key string) (value.Wrapped, bool, error) {
	s.metrics.gets.Inc()

	s.storageMu.RLock()
	defer s.storageMu.RUnlock()

	w, ok, err := s.backend.Get(key)
	if err != nil {
		return value.Wrapped{}, false, store.WrapError(store.RetCStorageError, fmt.Sprintf("cannot decode value of %q", key), err)
	}
	return w, ok, nil
}

// save writes the snapshot under the storage and index read locks.
// The caller must hold the gate (shared or exclusive).
func (s *Store) save(path string) error {
	start := time.Now()
	defer s.metrics.saveTimer.UpdateSince(start)

	s.storageMu.RLock()
	defer s.storageMu.RUnlock()
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	if err := writeSnapshotFile(path, s.backend, s.idx); err != nil {
		if errors.Is(err, errSnapshotFormat) {
			return store.WrapError(store.RetCSerializationError, "cannot encode snapshot", err)
		}
		return store.WrapError(store.RetCIOError, fmt.Sprintf("cannot write snapshot %s", path), err)
	}
	log.Debugf("saved snapshot %s", path)
	return nil
}

// backgroundSweep is run by the sweeper
func (s *Store) backgroundSweep() {
	if _, err := s.RemoveExpired(); err != nil {
		log.Errorf("background sweep failed: %v", err)
	}
}
