// Package lock provides keyed locking for operations that must not
// interleave for the same entity, such as applying a match's points.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a key stays held past the caller's timeout.
var ErrLockTimeout = errors.New("lock acquisition timeout")

// keyMutex is a one-slot semaphore; a channel lets waiters give up on timeout
// without leaving a goroutine parked on a mutex.
type keyMutex struct {
	ch chan struct{}
}

func newKeyMutex() *keyMutex {
	return &keyMutex{ch: make(chan struct{}, 1)}
}

// KeyLock serialises work per key. Different keys never block each other.
type KeyLock struct {
	locks sync.Map // map[string]*keyMutex
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock() *KeyLock {
	return &KeyLock{}
}

func (kl *KeyLock) get(key string) *keyMutex {
	if v, ok := kl.locks.Load(key); ok {
		return v.(*keyMutex)
	}
	actual, _ := kl.locks.LoadOrStore(key, newKeyMutex())
	return actual.(*keyMutex)
}

// WithLockContext executes fn while holding the lock for key, giving up
// after timeout. Returns ErrLockTimeout on timeout and ctx.Err() on
// cancellation.
func (kl *KeyLock) WithLockContext(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	if err := kl.acquire(ctx, key, timeout); err != nil {
		return err
	}
	defer kl.release(key)
	return fn()
}

func (kl *KeyLock) acquire(ctx context.Context, key string, timeout time.Duration) error {
	m := kl.get(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m.ch <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (kl *KeyLock) release(key string) {
	if v, ok := kl.locks.Load(key); ok {
		<-v.(*keyMutex).ch
	}
}
