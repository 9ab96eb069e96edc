/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
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

package redis_test

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/folio/server/backend/sync"
	"github.com/yorkie-team/folio/server/backend/sync/redis"
)

func setupTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	config := &redis.Config{
		URL:               "redis://" + mr.Addr(),
		DialTimeout:       "1s",
		LockLeaseTime:     "10s",
		LockRetryInterval: "5ms",
	}
	require.NoError(t, config.Validate())

	cli, err := redis.Dial(config)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, cli.Close())
	})

	return cli, mr
}

func TestConfig(t *testing.T) {
	config := &redis.Config{
		URL:               "redis://localhost:6379",
		DialTimeout:       "5s",
		LockLeaseTime:     "30s",
		LockRetryInterval: "20ms",
	}
	assert.NoError(t, config.Validate())
	assert.Equal(t, redis.DefaultKeyPrefix, config.Prefix())

	config.LockLeaseTime = "0s"
	assert.Error(t, config.Validate())

	config.LockLeaseTime = "30s"
	config.DialTimeout = "5"
	assert.Error(t, config.Validate())

	config.DialTimeout = "5s"
	config.URL = ""
	assert.ErrorIs(t, config.Validate(), redis.ErrEmptyURL)
}

func TestLocker(t *testing.T) {
	t.Run("lock and unlock test", func(t *testing.T) {
		cli, mr := setupTestClient(t)
		ctx := context.Background()

		lockerA, err := cli.NewLocker(ctx, sync.NewKey("versions/doc"))
		require.NoError(t, err)
		lockerB, err := cli.NewLocker(ctx, sync.NewKey("versions/doc"))
		require.NoError(t, err)

		assert.NoError(t, lockerA.Lock(ctx))
		assert.True(t, mr.Exists(redis.DefaultKeyPrefix+"versions/doc"))
		assert.ErrorIs(t, lockerB.TryLock(ctx), sync.ErrAlreadyLocked)

		assert.NoError(t, lockerA.Unlock(ctx))
		assert.False(t, mr.Exists(redis.DefaultKeyPrefix+"versions/doc"))
		assert.NoError(t, lockerB.TryLock(ctx))
		assert.NoError(t, lockerB.Unlock(ctx))
	})

	t.Run("lock gives up when context is done test", func(t *testing.T) {
		cli, _ := setupTestClient(t)
		ctx := context.Background()

		lockerA, err := cli.NewLocker(ctx, sync.NewKey("versions/doc"))
		require.NoError(t, err)
		lockerB, err := cli.NewLocker(ctx, sync.NewKey("versions/doc"))
		require.NoError(t, err)
		require.NoError(t, lockerA.Lock(ctx))

		timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, lockerB.Lock(timeoutCtx), context.DeadlineExceeded)

		assert.NoError(t, lockerA.Unlock(ctx))
	})

	t.Run("expired lease does not release the next holder test", func(t *testing.T) {
		cli, mr := setupTestClient(t)
		ctx := context.Background()

		lockerA, err := cli.NewLocker(ctx, sync.NewKey("versions/doc"))
		require.NoError(t, err)
		lockerB, err := cli.NewLocker(ctx, sync.NewKey("versions/doc"))
		require.NoError(t, err)

		require.NoError(t, lockerA.Lock(ctx))
		mr.FastForward(11 * time.Second)

		require.NoError(t, lockerB.TryLock(ctx))
		assert.ErrorIs(t, lockerA.Unlock(ctx), sync.ErrNotLocked)
		assert.True(t, mr.Exists(redis.DefaultKeyPrefix+"versions/doc"))

		assert.NoError(t, lockerB.Unlock(ctx))
	})

	t.Run("unlock without lock test", func(t *testing.T) {
		cli, _ := setupTestClient(t)
		ctx := context.Background()

		locker, err := cli.NewLocker(ctx, sync.NewKey("versions/doc"))
		require.NoError(t, err)
		assert.ErrorIs(t, locker.Unlock(ctx), sync.ErrNotLocked)
	})

	t.Run("serialize critical sections test", func(t *testing.T) {
		cli, _ := setupTestClient(t)
		ctx := context.Background()

		counter := 0
		wg := gosync.WaitGroup{}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				locker, err := cli.NewLocker(ctx, sync.NewKey("counter"))
				assert.NoError(t, err)
				assert.NoError(t, locker.Lock(ctx))
				counter++
				assert.NoError(t, locker.Unlock(ctx))
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, counter)
	})
}
