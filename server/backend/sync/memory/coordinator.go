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

// Package memory provides a coordinator whose locks live in the memory of a
// single server.
package memory

import (
	"context"

	"github.com/yorkie-team/folio/pkg/locker"
	"github.com/yorkie-team/folio/server/backend/sync"
)

// Coordinator is a sync.Coordinator backed by named in-process locks.
type Coordinator struct {
	locks *locker.Locker
}

// NewCoordinator creates an instance of Coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{locks: locker.New()}
}

// NewLocker creates a locker of the given key. It never fails.
func (c *Coordinator) NewLocker(_ context.Context, key sync.Key) (sync.Locker, error) {
	return &internalLocker{key: key.String(), locks: c.locks}, nil
}

// Close does nothing: the locks are dropped with the coordinator.
func (c *Coordinator) Close() error {
	return nil
}
