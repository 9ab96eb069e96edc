/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
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

package backend

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// newFanOutSemaphore bounds the keys processed at once by all FanOut calls
// of a backend. A non-positive limit processes one key at a time.
func newFanOutSemaphore(limit int64) *semaphore.Weighted {
	return semaphore.NewWeighted(max(limit, 1))
}

// FanOut calls fn once per key, concurrently up to the backend's
// PruneConcurrency. results[i] belongs to keys[i] and is the zero value when
// fn failed for that key. The errors of all failed keys are joined, so one
// bad document does not hide the others.
func FanOut[K comparable, R any](
	ctx context.Context,
	be *Backend,
	keys []K,
	fn func(ctx context.Context, key K) (R, error),
) ([]R, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	results := make([]R, len(keys))
	errs := make([]error, len(keys))

	wg := sync.WaitGroup{}
	wg.Add(len(keys))
	for i := range keys {
		go func() {
			defer wg.Done()

			if err := be.fanOutSem.Acquire(ctx, 1); err != nil {
				errs[i] = err
				return
			}
			defer be.fanOutSem.Release(1)

			results[i], errs[i] = fn(ctx, keys[i])
		}()
	}
	wg.Wait()

	return results, errors.Join(errs...)
}
