package lockmgr

import (
	"github.com/ValentinKolb/eKV/lib/store"
	"github.com/ValentinKolb/eKV/lib/value"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var log = logger.GetLogger("lockmgr")

type lockMgrImpl struct {
	store store.IStore
}

// NewLockManager creates a lock manager that keeps its locks in s
func NewLockManager(s store.IStore) ILockManager {
	return &lockMgrImpl{
		store: s,
	}
}

func (lm *lockMgrImpl) AcquireLock(key string, timeout time.Duration) (bool, string, error) {
	ownerID, err := generateOwnerID()
	if err != nil {
		return false, "", err
	}

	// check and set inside one exclusive transaction, an expired lock is overwritten
	tx := lm.store.Begin()
	defer tx.Close()

	if _, held, err := tx.GetLive(key); err != nil || held {
		return false, "", err
	}
	if err := tx.Insert(key, value.String(ownerID), timeout); err != nil {
		return false, "", err
	}
	if err := tx.Commit(); err != nil {
		return false, "", err
	}

	log.Debugf("acquired lock %s", key)
	return true, ownerID, nil
}

func (lm *lockMgrImpl) ReleaseLock(key string, ownerID string) (bool, error) {
	tx := lm.store.Begin()
	defer tx.Close()

	current, ok, err := tx.Get(key)
	if err != nil || !ok {
		return err == nil, err
	}

	// only the owner may release
	if !current.Equal(value.String(ownerID)) {
		return false, nil
	}

	if err := tx.Remove(key); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	log.Debugf("released lock %s", key)
	return true, nil
}
