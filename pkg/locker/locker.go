/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * This file was written with reference to moby/locker.
 *   https://github.com/moby/locker
 */

/*
Package locker provides named locks so that work on one key, such as a
document, can be serialized without a global lock.

If a lock with a given name does not exist when `Lock` is called, one is
created. Lock references are cleaned up on `Unlock` if nothing else is
waiting for the lock. Unlike a sync.Mutex, `Lock` gives up when the given
context is done, so a stuck holder never blocks a caller indefinitely.
*/
package locker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNoSuchLock is returned when the requested lock does not exist
var ErrNoSuchLock = errors.New("no such lock")

// Locker provides a locking mechanism based on the passed in reference name
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockCtr
}

// lockCtr is used by Locker to represent a lock with a given name.
type lockCtr struct {
	// sem holds a token while the lock is held.
	sem chan struct{}
	// waiters is the number of waiters waiting to acquire the lock
	// this is int32 instead of uint32 so we can add `-1` in `dec()`
	waiters int32
}

func newLockCtr() *lockCtr {
	return &lockCtr{sem: make(chan struct{}, 1)}
}

// inc increments the number of waiters waiting for the lock
func (l *lockCtr) inc() {
	atomic.AddInt32(&l.waiters, 1)
}

// dec decrements the number of waiters waiting on the lock
func (l *lockCtr) dec() {
	atomic.AddInt32(&l.waiters, -1)
}

// count gets the current number of waiters
func (l *lockCtr) count() int32 {
	return atomic.LoadInt32(&l.waiters)
}

// lock acquires the token or returns the context error.
func (l *lockCtr) lock(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lockCtr) tryLock() bool {
	select {
	case l.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (l *lockCtr) unlock() {
	<-l.sem
}

// New creates a new Locker
func New() *Locker {
	return &Locker{
		locks: make(map[string]*lockCtr),
	}
}

// acquire registers the caller as a waiter of the named lock.
func (l *Locker) acquire(name string) *lockCtr {
	l.mu.Lock()
	defer l.mu.Unlock()

	nameLock, exists := l.locks[name]
	if !exists {
		nameLock = newLockCtr()
		l.locks[name] = nameLock
	}

	// increment the waiters while inside the main mutex so that the lock is
	// not deleted if `Lock` and `Unlock` are called concurrently.
	nameLock.inc()
	return nameLock
}

// release drops the caller from the waiters of a lock it failed to take and
// removes the lock when nobody else refers to it.
func (l *Locker) release(name string, nameLock *lockCtr) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nameLock.dec()
	if nameLock.count() == 0 && len(nameLock.sem) == 0 && l.locks[name] == nameLock {
		delete(l.locks, name)
	}
}

// Lock locks the lock with the given name. If it doesn't exist, one is
// created. It returns the context error if ctx is done before the lock is
// acquired.
func (l *Locker) Lock(ctx context.Context, name string) error {
	nameLock := l.acquire(name)

	// wait outside the main mutex so we don't block other names.
	if err := nameLock.lock(ctx); err != nil {
		l.release(name, nameLock)
		return err
	}

	nameLock.dec()
	return nil
}

// TryLock locks the lock with the given name if it is not held. If it
// doesn't exist, one is created.
func (l *Locker) TryLock(name string) bool {
	nameLock := l.acquire(name)
	if !nameLock.tryLock() {
		l.release(name, nameLock)
		return false
	}

	nameLock.dec()
	return true
}

// Unlock unlocks the lock with the given name.
// If the given lock is not being waited on by any other callers, it is deleted
func (l *Locker) Unlock(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nameLock, exists := l.locks[name]
	if !exists || len(nameLock.sem) == 0 {
		return ErrNoSuchLock
	}

	if nameLock.count() == 0 {
		delete(l.locks, name)
	}
	nameLock.unlock()

	return nil
}
