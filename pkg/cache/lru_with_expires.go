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

package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUWithExpires is an LRU whose entries also expire ttl after they were
// added. It suits values that go stale on their own, like a diff against the
// live content of a document.
type LRUWithExpires[K comparable, V any] struct {
	*LRU[K, V]
	ttl time.Duration
}

// NewLRUWithExpires creates an LRUWithExpires holding at most size entries.
func NewLRUWithExpires[K comparable, V any](size int, ttl time.Duration, name string) (*LRUWithExpires[K, V], error) {
	if size <= 0 {
		return nil, ErrInvalidMaxSize
	}

	return &LRUWithExpires[K, V]{
		LRU: newLRU[K, V](expirable.NewLRU[K, V](size, nil, ttl), name),
		ttl: ttl,
	}, nil
}

// TTL returns how long an entry lives.
func (c *LRUWithExpires[K, V]) TTL() time.Duration {
	return c.ttl
}
