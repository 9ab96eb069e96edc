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
 */

package background_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/folio/server/backend/background"
	"github.com/yorkie-team/folio/server/logging"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
)

func TestBackground(t *testing.T) {
	t.Run("close waits for attached goroutines test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)
		bg := background.New(metrics)

		release := make(chan struct{})
		var done atomic.Int32
		for range 3 {
			require.NoError(t, bg.AttachGoroutine(func(ctx context.Context) {
				assert.NotNil(t, logging.From(ctx))
				<-release
				done.Add(1)
			}, "test"))
		}

		close(release)
		bg.Close()
		assert.Equal(t, int32(3), done.Load())
	})

	t.Run("close cancels the context of goroutines test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)
		bg := background.New(metrics)

		var canceled atomic.Bool
		require.NoError(t, bg.AttachGoroutine(func(ctx context.Context) {
			<-ctx.Done()
			canceled.Store(true)
		}, "test"))

		bg.Close()
		assert.True(t, canceled.Load())
		bg.Close()
	})

	t.Run("attach after close is rejected test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)
		bg := background.New(metrics)
		bg.Close()

		ran := false
		err = bg.AttachGoroutine(func(ctx context.Context) {
			ran = true
		}, "test")
		assert.ErrorIs(t, err, background.ErrClosed)
		assert.False(t, ran)
	})
}
