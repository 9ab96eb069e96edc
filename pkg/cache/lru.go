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
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidMaxSize is returned when the given max size is not positive.
var ErrInvalidMaxSize = errors.New("max size must be > 0")

// store is the part of hashicorp's caches that LRU wraps. Both the plain and
// the expirable LRU implement it.
type store[K comparable, V any] interface {
	Add(key K, value V) bool
	Get(key K) (V, bool)
	Remove(key K) bool
	Purge()
	Len() int
}

// LRU is a named LRU cache that counts its hits and misses.
type LRU[K comparable, V any] struct {
	store store[K, V]
	stats *Stats
	name  string
}

// NewLRU creates an LRU holding at most size entries.
func NewLRU[K comparable, V any](size int, name string) (*LRU[K, V], error) {
	if size <= 0 {
		return nil, ErrInvalidMaxSize
	}

	s, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return newLRU[K, V](s, name), nil
}

func newLRU[K comparable, V any](s store[K, V], name string) *LRU[K, V] {
	return &LRU[K, V]{store: s, stats: &Stats{}, name: name}
}

// Get returns the value of key and records a hit or a miss.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	value, ok := c.store.Get(key)
	if ok {
		c.stats.hit()
	} else {
		c.stats.miss()
	}
	return value, ok
}

// Add stores value under key. It reports whether an entry was evicted.
func (c *LRU[K, V]) Add(key K, value V) bool {
	return c.store.Add(key, value)
}

// Remove drops key. It reports whether the key was present.
func (c *LRU[K, V]) Remove(key K) bool {
	return c.store.Remove(key)
}

// Purge drops every entry. The statistics are kept.
func (c *LRU[K, V]) Purge() {
	c.store.Purge()
}

// Len returns the number of entries, expired ones included until they are
// swept.
func (c *LRU[K, V]) Len() int {
	return c.store.Len()
}

// Stats returns the hit and miss counters.
func (c *LRU[K, V]) Stats() *Stats {
	return c.stats
}

// Name returns the name the cache is reported under.
func (c *LRU[K, V]) Name() string {
	return c.name
}
