/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

package sync

import (
	"context"
	"errors"
	"fmt"
)

// Coordinator hands out lockers. The memory coordinator serves a single
// server, the Redis one serves servers sharing a store.
type Coordinator interface {
	// NewLocker creates a locker of the given key. Lockers of equal keys
	// exclude each other.
	NewLocker(ctx context.Context, key Key) (Locker, error)

	// Close releases the resources of the coordinator.
	Close() error
}

// Release gives back a lock taken by Acquire or TryAcquire.
type Release func(ctx context.Context) error

// Acquire blocks until it holds the lock of key or ctx is done.
func Acquire(ctx context.Context, c Coordinator, key Key) (Release, error) {
	locker, err := c.NewLocker(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("new locker %s: %w", key, err)
	}

	if err := locker.Lock(ctx); err != nil {
		return nil, err
	}
	return locker.Unlock, nil
}

// TryAcquire takes the lock of key only if nobody holds it. The boolean is
// false, with a nil error, when the lock is held elsewhere.
func TryAcquire(ctx context.Context, c Coordinator, key Key) (Release, bool, error) {
	locker, err := c.NewLocker(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("new locker %s: %w", key, err)
	}

	if err := locker.TryLock(ctx); err != nil {
		if errors.Is(err, ErrAlreadyLocked) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return locker.Unlock, true, nil
}
