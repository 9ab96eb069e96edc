/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
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

package memory_test

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/folio/server/backend/sync"
	"github.com/yorkie-team/folio/server/backend/sync/memory"
)

func TestCoordinator(t *testing.T) {
	t.Run("lockers of the same key exclude each other test", func(t *testing.T) {
		coordinator := memory.NewCoordinator()
		ctx := context.Background()

		lockerA, err := coordinator.NewLocker(ctx, sync.NewKey("versions/doc"))
		assert.NoError(t, err)
		lockerB, err := coordinator.NewLocker(ctx, sync.NewKey("versions/doc"))
		assert.NoError(t, err)

		assert.NoError(t, lockerA.Lock(ctx))
		assert.ErrorIs(t, lockerB.TryLock(ctx), sync.ErrAlreadyLocked)

		timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, lockerB.Lock(timeoutCtx), context.DeadlineExceeded)

		assert.NoError(t, lockerA.Unlock(ctx))
		assert.NoError(t, lockerB.TryLock(ctx))
		assert.NoError(t, lockerB.Unlock(ctx))
	})

	t.Run("lockers of different keys are independent test", func(t *testing.T) {
		coordinator := memory.NewCoordinator()
		ctx := context.Background()

		lockerA, err := coordinator.NewLocker(ctx, sync.NewKey("versions/a"))
		assert.NoError(t, err)
		lockerB, err := coordinator.NewLocker(ctx, sync.NewKey("versions/b"))
		assert.NoError(t, err)

		assert.NoError(t, lockerA.Lock(ctx))
		assert.NoError(t, lockerB.TryLock(ctx))
		assert.NoError(t, lockerA.Unlock(ctx))
		assert.NoError(t, lockerB.Unlock(ctx))
	})

	t.Run("unlock without lock test", func(t *testing.T) {
		coordinator := memory.NewCoordinator()
		ctx := context.Background()

		locker, err := coordinator.NewLocker(ctx, sync.NewKey("versions/c"))
		assert.NoError(t, err)
		assert.ErrorIs(t, locker.Unlock(ctx), sync.ErrNotLocked)
	})

	t.Run("only the holder unlocks test", func(t *testing.T) {
		coordinator := memory.NewCoordinator()
		ctx := context.Background()

		holder, err := coordinator.NewLocker(ctx, sync.NewKey("versions", "d"))
		assert.NoError(t, err)
		other, err := coordinator.NewLocker(ctx, sync.NewKey("versions", "d"))
		assert.NoError(t, err)

		assert.NoError(t, holder.Lock(ctx))
		assert.ErrorIs(t, other.Unlock(ctx), sync.ErrNotLocked)
		assert.ErrorIs(t, other.TryLock(ctx), sync.ErrAlreadyLocked)

		assert.NoError(t, holder.Unlock(ctx))
		assert.ErrorIs(t, holder.Unlock(ctx), sync.ErrNotLocked)
	})

	t.Run("serialize critical sections test", func(t *testing.T) {
		coordinator := memory.NewCoordinator()
		ctx := context.Background()

		counter := 0
		wg := gosync.WaitGroup{}
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				locker, err := coordinator.NewLocker(ctx, sync.NewKey("counter"))
				assert.NoError(t, err)
				assert.NoError(t, locker.Lock(ctx))
				current := counter
				time.Sleep(time.Microsecond)
				counter = current + 1
				assert.NoError(t, locker.Unlock(ctx))
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, counter)
	})
}
