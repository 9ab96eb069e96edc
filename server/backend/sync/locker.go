/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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
 */

// Package sync provides the locks that serialize writers of the same
// document across goroutines and, with a shared backend, across servers.
package sync

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrAlreadyLocked is returned when the lock is already locked.
	ErrAlreadyLocked = errors.New("already locked")

	// ErrNotLocked is returned when unlocking a lock that this locker does
	// not hold, e.g. after its lease expired.
	ErrNotLocked = errors.New("not locked")
)

// Key names a lock. Segments are joined with "/", e.g. "versions/<docID>".
type Key string

// NewKey creates a key from the given segments.
func NewKey(segments ...string) Key {
	return Key(strings.Join(segments, "/"))
}

// String returns a string representation of this Key.
func (k Key) String() string {
	return string(k)
}

// A Locker represents an object that can be locked and unlocked.
type Locker interface {
	// Lock locks the mutex with a cancelable context.
	Lock(ctx context.Context) error

	// TryLock locks the mutex if not already locked by another session.
	TryLock(ctx context.Context) error

	// Unlock unlocks the mutex.
	Unlock(ctx context.Context) error
}
