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

package memory

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/yorkie-team/folio/pkg/locker"
	"github.com/yorkie-team/folio/server/backend/sync"
)

// internalLocker holds the named lock of its key at most once. Only the
// locker that took the lock may release it, like the owner token of the
// Redis locker.
type internalLocker struct {
	key   string
	locks *locker.Locker

	mu   gosync.Mutex
	held bool
}

// Lock waits for the lock until ctx is done.
func (il *internalLocker) Lock(ctx context.Context) error {
	if err := il.locks.Lock(ctx, il.key); err != nil {
		return fmt.Errorf("lock %s: %w", il.key, err)
	}

	il.setHeld(true)
	return nil
}

// TryLock takes the lock if nobody holds it.
func (il *internalLocker) TryLock(_ context.Context) error {
	if !il.locks.TryLock(il.key) {
		return fmt.Errorf("lock %s: %w", il.key, sync.ErrAlreadyLocked)
	}

	il.setHeld(true)
	return nil
}

// Unlock releases the lock taken by this locker.
func (il *internalLocker) Unlock(_ context.Context) error {
	il.mu.Lock()
	defer il.mu.Unlock()

	if !il.held {
		return fmt.Errorf("unlock %s: %w", il.key, sync.ErrNotLocked)
	}
	if err := il.locks.Unlock(il.key); err != nil {
		return fmt.Errorf("unlock %s: %w", il.key, err)
	}

	il.held = false
	return nil
}

func (il *internalLocker) setHeld(held bool) {
	il.mu.Lock()
	defer il.mu.Unlock()
	il.held = held
}
