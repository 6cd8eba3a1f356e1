package lockmgr

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/lib/store/lstore"
	"github.com/ValentinKolb/eKV/lib/value"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T) (ILockManager, *testClock) {
	t.Helper()
	locks, clock, _ := newTestManagerWithStore(t)
	return locks, clock
}

func newTestManagerWithStore(t *testing.T) (ILockManager, *testClock, *lstore.Store) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts := lstore.DefaultOptions()
	opts.Clock = clock.Now
	s, err := lstore.New(opts)
	if err != nil {
		t.Fatalf("lstore.New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return NewLockManager(s), clock, s
}

func TestAcquireRelease(t *testing.T) {
	locks, _ := newTestManager(t)

	ok, owner, err := locks.AcquireLock("res", 0)
	if err != nil || !ok || owner == "" {
		t.Fatalf("AcquireLock = %v, %q, %v; want true, owner, nil", ok, owner, err)
	}

	if ok, _, _ := locks.AcquireLock("res", 0); ok {
		t.Errorf("a held lock must not be acquired twice")
	}

	if ok, _ := locks.ReleaseLock("res", "not-the-owner"); ok {
		t.Errorf("only the owner may release the lock")
	}

	if ok, err := locks.ReleaseLock("res", owner); err != nil || !ok {
		t.Fatalf("ReleaseLock = %v, %v; want true, nil", ok, err)
	}

	if ok, _ := locks.ReleaseLock("res", owner); !ok {
		t.Errorf("releasing an absent lock should report true")
	}

	if ok, _, _ := locks.AcquireLock("res", 0); !ok {
		t.Errorf("released lock should be acquirable again")
	}
}

func TestLockTimeout(t *testing.T) {
	locks, clock := newTestManager(t)

	ok, owner, _ := locks.AcquireLock("res", time.Second)
	if !ok {
		t.Fatalf("AcquireLock failed")
	}

	clock.Advance(500 * time.Millisecond)
	if ok, _, _ := locks.AcquireLock("res", time.Second); ok {
		t.Errorf("lock must be held until its timeout")
	}

	clock.Advance(time.Second)
	ok, newOwner, _ := locks.AcquireLock("res", 0)
	if !ok || newOwner == owner {
		t.Errorf("expired lock should be acquirable by a new owner")
	}
	if ok, _ := locks.ReleaseLock("res", owner); ok {
		t.Errorf("the previous owner must not release the new lock")
	}
}

func TestLockExclusivity(t *testing.T) {
	locks, _ := newTestManager(t)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, err := locks.AcquireLock("contended", 0); err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if winners.Load() != 1 {
		t.Errorf("exactly one goroutine should acquire the lock, got %d", winners.Load())
	}
}

func TestAcquireOnlyTouchesItsKey(t *testing.T) {
	locks, clock, s := newTestManagerWithStore(t)

	if err := s.Insert("other", value.Int(1), time.Second); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if ok, _, _ := locks.AcquireLock("res", time.Second); !ok {
		t.Fatalf("AcquireLock failed")
	}
	clock.Advance(2 * time.Second)

	// the expired lock is replaced in place, unrelated expired entries stay until swept
	ok, owner, err := locks.AcquireLock("res", 0)
	if err != nil || !ok {
		t.Fatalf("expired lock should be acquirable: %v, %v", ok, err)
	}
	if _, loaded, _ := s.Get("other"); !loaded {
		t.Errorf("AcquireLock must not sweep unrelated expired entries")
	}
	if v, _, _ := s.Get("res"); !v.Equal(value.String(owner)) {
		t.Errorf("lock entry should hold the new owner, got %s", v)
	}
	if keys, _ := s.Lookup(value.String(owner)); len(keys) != 1 || keys[0] != "res" {
		t.Errorf("index should map the new owner to the lock key, got %v", keys)
	}
}
