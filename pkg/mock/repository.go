package mock

import (
	"sync"
	"time"

	"github.com/m-mizutani/honeybadger/pkg/adaptor"
)

// Repository is mock of adaptor.Repository
type Repository struct {
	mutex sync.Mutex
	locks map[string]*adaptor.RunLock
}

// NewRepository is constructor of mock.Repository
func NewRepository() *Repository {
	return &Repository{
		locks: make(map[string]*adaptor.RunLock),
	}
}

// AcquireRunLock puts the lock to memory if the slot is free or expired
func (x *Repository) AcquireRunLock(lock *adaptor.RunLock, now time.Time) (bool, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if current, ok := x.locks[lock.Name]; ok && current.ExpiresAt >= now.Unix() {
		return false, nil
	}

	copied := *lock
	x.locks[lock.Name] = &copied
	return true, nil
}

// ReleaseRunLock deletes the lock only if runID still holds it
func (x *Repository) ReleaseRunLock(name, runID string) error {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if current, ok := x.locks[name]; ok && current.RunID == runID {
		delete(x.locks, name)
	}
	return nil
}

// RunLock returns current lock of name, or nil
func (x *Repository) RunLock(name string) *adaptor.RunLock {
	x.mutex.Lock()
	defer x.mutex.Unlock()
	return x.locks[name]
}
