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

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/folio/pkg/cache"
)

func TestLRU(t *testing.T) {
	t.Run("invalid size test", func(t *testing.T) {
		lruCache, err := cache.NewLRU[string, string](0, "diffs")
		assert.ErrorIs(t, err, cache.ErrInvalidMaxSize)
		assert.Nil(t, lruCache)
	})

	t.Run("add and evict test", func(t *testing.T) {
		lruCache, err := cache.NewLRU[string, string](1, "diffs")
		assert.NoError(t, err)
		assert.Equal(t, "diffs", lruCache.Name())

		lruCache.Add("a", "1")
		value, ok := lruCache.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "1", value)

		// max size of the current cache is 1
		assert.True(t, lruCache.Add("b", "2"))
		_, ok = lruCache.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 1, lruCache.Len())
	})

	t.Run("stats test", func(t *testing.T) {
		lruCache, err := cache.NewLRU[int, int](10, "stats")
		assert.NoError(t, err)

		lruCache.Add(1, 1)
		lruCache.Get(1)
		lruCache.Get(1)
		lruCache.Get(2)

		stats := lruCache.Stats()
		assert.Equal(t, int64(2), stats.Hits())
		assert.Equal(t, int64(1), stats.Misses())
		assert.Equal(t, int64(3), stats.Total())
		assert.InDelta(t, 66.66, stats.HitRate(), 0.01)

		stats.Reset()
		assert.Equal(t, int64(0), stats.Total())
		assert.Equal(t, 0.0, stats.HitRate())
	})

	t.Run("remove and purge test", func(t *testing.T) {
		lruCache, err := cache.NewLRU[int, int](10, "purge")
		assert.NoError(t, err)

		lruCache.Add(1, 1)
		lruCache.Add(2, 2)
		assert.True(t, lruCache.Remove(1))
		assert.Equal(t, 1, lruCache.Len())

		lruCache.Purge()
		assert.Equal(t, 0, lruCache.Len())
	})
}

func TestLRUWithExpires(t *testing.T) {
	t.Run("invalid size test", func(t *testing.T) {
		lruCache, err := cache.NewLRUWithExpires[string, string](0, time.Second, "current")
		assert.ErrorIs(t, err, cache.ErrInvalidMaxSize)
		assert.Nil(t, lruCache)
	})

	t.Run("get expired cache test", func(t *testing.T) {
		lruCache, err := cache.NewLRUWithExpires[string, string](1, 10*time.Millisecond, "current")
		assert.NoError(t, err)
		assert.Equal(t, 10*time.Millisecond, lruCache.TTL())
		assert.Equal(t, "current", lruCache.Name())

		lruCache.Add("request", "response")
		response, ok := lruCache.Get("request")
		assert.True(t, ok)
		assert.Equal(t, "response", response)

		assert.Eventually(t, func() bool {
			_, ok := lruCache.Get("request")
			return !ok
		}, time.Second, 5*time.Millisecond)
		assert.GreaterOrEqual(t, lruCache.Stats().Misses(), int64(1))
	})
}

func TestManager(t *testing.T) {
	lruCache, err := cache.NewLRU[int, int](10, "diffs")
	assert.NoError(t, err)
	lruCache.Add(1, 1)
	lruCache.Get(1)
	lruCache.Get(2)

	manager := cache.NewManager(time.Millisecond)
	manager.RegisterCache(lruCache)

	summaries := manager.Summaries()
	assert.Len(t, summaries, 1)
	assert.Equal(t, cache.Summary{
		Name:    "diffs",
		Len:     1,
		Hits:    1,
		Misses:  1,
		HitRate: 50,
	}, summaries[0])

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		manager.StartPeriodicLogging(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("periodic logging did not stop")
	}
}
