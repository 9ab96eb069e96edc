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

package backend_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/housekeeping"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
)

func newMemoryBackend(t *testing.T, pruneConcurrency int64) *backend.Backend {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	conf := newValidBackendConf()
	conf.PruneConcurrency = pruneConcurrency
	be, err := backend.New(&conf, nil, nil, nil, &housekeeping.Config{
		Interval:          "1m",
		DocumentFetchSize: 100,
	}, metrics)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})

	return be
}

func TestFanOut(t *testing.T) {
	ctx := context.Background()

	t.Run("results keep the order of keys test", func(t *testing.T) {
		be := newMemoryBackend(t, 2)

		results, err := backend.FanOut(ctx, be, []int{1, 2, 3, 4}, func(ctx context.Context, key int) (int, error) {
			return key * 10, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, []int{10, 20, 30, 40}, results)
	})

	t.Run("concurrency is bounded test", func(t *testing.T) {
		be := newMemoryBackend(t, 2)

		var running, peak atomic.Int32
		release := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := backend.FanOut(ctx, be, []int{1, 2, 3, 4, 5}, func(ctx context.Context, key int) (int, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-release
				running.Add(-1)
				return key, nil
			})
			assert.NoError(t, err)
		}()

		assert.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, time.Millisecond)
		close(release)
		<-done
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("errors of failed keys are joined test", func(t *testing.T) {
		be := newMemoryBackend(t, 0)
		errOdd := errors.New("odd")

		results, err := backend.FanOut(ctx, be, []int{1, 2, 3}, func(ctx context.Context, key int) (int, error) {
			if key%2 == 1 {
				return 0, errOdd
			}
			return key, nil
		})
		assert.ErrorIs(t, err, errOdd)
		assert.Equal(t, []int{0, 2, 0}, results)
	})

	t.Run("no keys test", func(t *testing.T) {
		be := newMemoryBackend(t, 1)

		results, err := backend.FanOut(ctx, be, []string{}, func(ctx context.Context, key string) (int, error) {
			return 1, nil
		})
		assert.NoError(t, err)
		assert.Empty(t, results)
	})
}
