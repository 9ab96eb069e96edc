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

// Package retry provides a bounded retry loop with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrRetriesExhausted is returned when the function still asks for a retry
// after the last attempt.
var ErrRetriesExhausted = errors.New("retries exhausted")

// WithExponentialBackoff calls fn until it succeeds, returns an error that
// shouldRetry rejects, or maxRetries retries have been made. Between attempts
// it waits 2^n * baseInterval, capped at maxInterval. When retries run out,
// the returned error wraps both ErrRetriesExhausted and the last error.
func WithExponentialBackoff(
	ctx context.Context,
	maxRetries uint64,
	baseInterval, maxInterval time.Duration,
	fn func() error,
	shouldRetry func(error) bool,
) error {
	var retries uint64
	for {
		err := fn()
		if err == nil || !shouldRetry(err) {
			return err
		}

		if retries >= maxRetries {
			return fmt.Errorf("%d attempts: %w: %w", retries+1, ErrRetriesExhausted, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(WaitInterval(retries, baseInterval, maxInterval)):
		}

		retries++
	}
}

// WaitInterval returns the interval to wait before the given retry. It
// returns maxInterval if the interval exceeds it.
func WaitInterval(retries uint64, baseInterval, maxInterval time.Duration) time.Duration {
	interval := time.Duration(math.Pow(2, float64(retries))) * baseInterval
	if maxInterval < interval {
		return maxInterval
	}

	return interval
}
