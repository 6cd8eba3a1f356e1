package lstore

import (
	"errors"
	"sync"
	"time"

	"github.com/ValentinKolb/eKV/lib/store"
	"github.com/ValentinKolb/eKV/lib/value"
)

// undoStep restores the state of one key as it was before a mutation
type undoStep struct {
	key     string
	prev    value.Wrapped
	existed bool
}

// transaction holds the store gate exclusively from Begin until it ends.
// Mutations record undo steps which Rollback replays in reverse.
type transaction struct {
	mu    sync.Mutex
	store *Store
	undo  []undoStep
	ended bool
}

func errTxClosed() error {
	return store.NewError(store.RetCTxClosed, "transaction already ended")
}

func (tx *transaction) Insert(key string, v value.Value, ttl time.Duration) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.ended {
		return errTxClosed()
	}

	prev, existed, err := tx.store.insert(key, value.NewWrapped(v, ttl, tx.store.now()))
	if err != nil {
		return err
	}
	tx.undo = append(tx.undo, undoStep{key: key, prev: prev, existed: existed})
	return nil
}

func (tx *transaction) Remove(key string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.ended {
		return errTxClosed()
	}

	prev, existed, err := tx.store.remove(key)
	if err != nil {
		return err
	}
	if existed {
		tx.undo = append(tx.undo, undoStep{key: key, prev: prev, existed: true})
	}
	return nil
}

func (tx *transaction) Get(key string) (value.Value, bool, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.ended {
		return value.Value{}, false, errTxClosed()
	}
	return tx.store.get(key)
}

func (tx *transaction) GetLive(key string) (value.Value, bool, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.ended {
		return value.Value{}, false, errTxClosed()
	}

	w, ok, err := tx.store.getWrapped(key)
	if err != nil || !ok || w.IsExpiredAt(tx.store.now()) {
		return value.Value{}, false, err
	}
	return w.Value, true, nil
}

func (tx *transaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.ended {
		return errTxClosed()
	}

	tx.undo = nil
	tx.end()
	return nil
}

func (tx *transaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.ended {
		return errTxClosed()
	}
	return tx.rollback()
}

func (tx *transaction) Close() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.ended {
		return nil
	}
	return tx.rollback()
}

// rollback replays the undo log in reverse and ends the transaction.
// Failing steps do not stop the replay, all errors are returned joined.
func (tx *transaction) rollback() error {
	var errs []error
	for i := len(tx.undo) - 1; i >= 0; i-- {
		step := tx.undo[i]
		var err error
		if step.existed {
			_, _, err = tx.store.insert(step.key, step.prev)
		} else {
			_, _, err = tx.store.remove(step.key)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	log.Debugf("rolled back transaction (%d steps)", len(tx.undo))
	tx.undo = nil
	tx.store.metrics.rollbacks.Inc()
	if tx.store.opts.OnRollback != nil {
		tx.store.opts.OnRollback()
	}
	tx.end()

	if len(errs) > 0 {
		return store.WrapError(store.RetCStorageError, "rollback incomplete", errors.Join(errs...))
	}
	return nil
}

// end marks the transaction as ended and releases the gate. Called exactly once.
func (tx *transaction) end() {
	tx.ended = true
	tx.store.gate.Unlock()
}
