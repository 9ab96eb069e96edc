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

// Package housekeeping provides the housekeeping service. The housekeeping
// service periodically runs registered batch tasks, such as the retention of
// auto versions.
package housekeeping

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/yorkie-team/folio/server/backend/sync"
	"github.com/yorkie-team/folio/server/logging"
)

// ErrAlreadyStarted is returned when a task is registered after Start.
var ErrAlreadyStarted = errors.New("housekeeping already started")

// Task is a batch job run by the housekeeping service.
type Task func(ctx context.Context) error

type task struct {
	name     string
	interval time.Duration
	run      Task
}

// Housekeeping is the housekeeping service. Each registered task runs on its
// own interval under a coordinator lock, so that servers sharing a store do
// not run the same task at once.
type Housekeeping struct {
	Config *Config

	coordinator sync.Coordinator
	tasks       []task

	mu         gosync.Mutex
	started    bool
	wg         gosync.WaitGroup
	cancelFunc context.CancelFunc
}

// New creates a new housekeeping instance.
func New(conf *Config, coordinator sync.Coordinator) (*Housekeeping, error) {
	if _, err := conf.ParseInterval(); err != nil {
		return nil, err
	}

	return &Housekeeping{
		Config:      conf,
		coordinator: coordinator,
	}, nil
}

// RegisterTask registers a task that runs every interval. The name is the key
// of the lock taken while the task runs.
func (h *Housekeeping) RegisterTask(name string, interval time.Duration, run Task) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return fmt.Errorf("register %s: %w", name, ErrAlreadyStarted)
	}
	if interval <= 0 {
		return fmt.Errorf("register %s: interval must be positive", name)
	}

	h.tasks = append(h.tasks, task{name: name, interval: interval, run: run})
	return nil
}

// Start starts the housekeeping service.
func (h *Housekeeping) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return ErrAlreadyStarted
	}
	h.started = true

	ctx, cancelFunc := context.WithCancel(ctx)
	h.cancelFunc = cancelFunc

	for _, t := range h.tasks {
		h.wg.Add(1)
		go func(t task) {
			defer h.wg.Done()
			h.loop(ctx, t)
		}(t)
	}

	return nil
}

// Stop stops the housekeeping service and waits for running tasks.
func (h *Housekeeping) Stop() error {
	h.mu.Lock()
	cancelFunc := h.cancelFunc
	h.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()
	}
	h.wg.Wait()

	return nil
}

// loop runs the task every interval until ctx is done.
func (h *Housekeeping) loop(ctx context.Context, t task) {
	for {
		select {
		case <-time.After(t.interval):
		case <-ctx.Done():
			return
		}

		if err := h.RunTask(ctx, t.name, t.run); err != nil && !errors.Is(err, context.Canceled) {
			logging.From(ctx).Errorf("HSKP: %s: %v", t.name, err)
		}
	}
}

// RunTask runs the task once under the lock of the given name. It returns
// nil without running the task when another server holds the lock.
func (h *Housekeeping) RunTask(ctx context.Context, name string, run Task) error {
	release, ok, err := sync.TryAcquire(ctx, h.coordinator, sync.NewKey(name))
	if err != nil || !ok {
		return err
	}

	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logging.From(ctx).Errorf("HSKP: release %s: %v", name, err)
		}
	}()

	return run(ctx)
}
