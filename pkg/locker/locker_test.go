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

package locker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockCounter(t *testing.T) {
	l := newLockCtr()
	l.inc()
	assert.Equal(t, int32(1), l.count())

	l.dec()
	assert.Equal(t, int32(0), l.count())
}

func TestLockerLock(t *testing.T) {
	ctx := context.Background()
	l := New()
	require.NoError(t, l.Lock(ctx, "test"))
	ctr := l.locks["test"]
	assert.Equal(t, int32(0), ctr.count())

	chDone := make(chan struct{})
	go func() {
		assert.NoError(t, l.Lock(ctx, "test"))
		close(chDone)
	}()

	chWaiting := make(chan struct{})
	go func() {
		for range time.Tick(time.Millisecond) {
			if ctr.count() == 1 {
				close(chWaiting)
				break
			}
		}
	}()

	select {
	case <-chWaiting:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for lock waiters to be incremented")
	}

	select {
	case <-chDone:
		t.Fatal("lock should not have returned while it was still held")
	default:
	}

	require.NoError(t, l.Unlock("test"))

	select {
	case <-chDone:
	case <-time.After(3 * time.Second):
		t.Fatal("lock should have completed")
	}

	assert.Equal(t, int32(0), ctr.count())
}

func TestLockerLockWithContext(t *testing.T) {
	l := New()
	require.NoError(t, l.Lock(context.Background(), "doc"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Lock(ctx, "doc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(0), l.locks["doc"].count())

	require.NoError(t, l.Unlock("doc"))
	_, exists := l.locks["doc"]
	assert.False(t, exists)

	require.NoError(t, l.Lock(context.Background(), "doc"))
	require.NoError(t, l.Unlock("doc"))
}

func TestLockerUnlock(t *testing.T) {
	ctx := context.Background()
	l := New()

	assert.ErrorIs(t, l.Unlock("missing"), ErrNoSuchLock)

	require.NoError(t, l.Lock(ctx, "test"))
	assert.NoError(t, l.Unlock("test"))
	assert.ErrorIs(t, l.Unlock("test"), ErrNoSuchLock)

	chDone := make(chan struct{})
	go func() {
		assert.NoError(t, l.Lock(ctx, "test"))
		close(chDone)
	}()

	select {
	case <-chDone:
	case <-time.After(3 * time.Second):
		t.Fatal("lock should not be blocked")
	}
}

func TestLockerConcurrency(t *testing.T) {
	ctx := context.Background()
	l := New()

	var wg sync.WaitGroup
	for i := 0; i <= 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if assert.NoError(t, l.Lock(ctx, "test")) {
				assert.NoError(t, l.Unlock("test"))
			}
		}()
	}

	chDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(chDone)
	}()

	select {
	case <-chDone:
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for locks to complete")
	}

	// Since everything has unlocked this should not exist anymore
	_, exists := l.locks["test"]
	assert.False(t, exists)
}

func TestLockerMutualExclusion(t *testing.T) {
	ctx := context.Background()
	l := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Lock(ctx, "doc"))
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			assert.NoError(t, l.Unlock("doc"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestTryLock(t *testing.T) {
	l := New()

	for i := 0; i < 2; i++ {
		assert.True(t, l.TryLock("test"), "lock should have been acquired")
		assert.False(t, l.TryLock("test"), "lock should not have been acquired")
		assert.False(t, l.TryLock("test"), "lock should not have been acquired")
		assert.NoError(t, l.Unlock("test"))
	}
}
