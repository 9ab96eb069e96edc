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

// Package background provides the background service. This service is used to
// manage the background goroutines in the backend.
package background

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/yorkie-team/folio/server/logging"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
)

// ErrClosed is returned when attaching a goroutine to a closed service.
var ErrClosed = errors.New("background service closed")

type routineID int32

func (c *routineID) next() string {
	next := atomic.AddInt32((*int32)(c), 1)
	return "b" + strconv.Itoa(int(next))
}

// Background runs the goroutines that outlive a request, such as autosaves
// and cache statistics. Closing it cancels their context and waits for them.
type Background struct {
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards closed so that no goroutine is added once Close waits.
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	routineID routineID
	metrics   *prometheus.Metrics
}

// New creates a new background service.
func New(metrics *prometheus.Metrics) *Background {
	ctx, cancel := context.WithCancel(context.Background())
	return &Background{
		ctx:     ctx,
		cancel:  cancel,
		metrics: metrics,
	}
}

// AttachGoroutine runs f in a tracked goroutine. The context given to f
// carries a logger named after the routine and is canceled by Close.
func (b *Background) AttachGoroutine(f func(ctx context.Context), taskType string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	b.wg.Add(1)
	ctx := logging.With(b.ctx, logging.New(b.routineID.next(), logging.NewField("task", taskType)))
	b.metrics.AddBackgroundGoroutines(taskType)
	go func() {
		defer func() {
			b.metrics.RemoveBackgroundGoroutines(taskType)
			b.wg.Done()
		}()
		f(ctx)
	}()

	return nil
}

// Close cancels the goroutines and waits for them to exit. It is safe to
// call more than once.
func (b *Background) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}
