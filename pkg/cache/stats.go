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

// Package cache provides LRU caches that track their hit rate.
package cache

import (
	"sync/atomic"
)

// Stats holds cache statistics.
type Stats struct {
	hits   int64
	misses int64
}

func (s *Stats) hit() {
	atomic.AddInt64(&s.hits, 1)
}

func (s *Stats) miss() {
	atomic.AddInt64(&s.misses, 1)
}

// Hits returns the number of cache hits.
func (s *Stats) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns the number of cache misses.
func (s *Stats) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

// Total returns the total number of cache operations.
func (s *Stats) Total() int64 {
	return s.Hits() + s.Misses()
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (s *Stats) HitRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits()) / float64(total) * 100.0
}

// Reset resets all statistics to zero.
func (s *Stats) Reset() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
}
