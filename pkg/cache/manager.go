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
	"context"
	"sync"
	"time"

	"github.com/yorkie-team/folio/server/logging"
)

// StatsProvider interface for cache objects that provide statistics.
type StatsProvider interface {
	Name() string
	Stats() *Stats
	Len() int
}

// Summary is the state of a cache at one point in time.
type Summary struct {
	Name    string
	Len     int
	Hits    int64
	Misses  int64
	HitRate float64
}

// Manager keeps track of the caches of a server and logs their hit rates
// periodically.
type Manager struct {
	mu       sync.RWMutex
	caches   []StatsProvider
	interval time.Duration
}

// NewManager creates a new cache manager. interval is the period of
// StartPeriodicLogging.
func NewManager(interval time.Duration) *Manager {
	return &Manager{interval: interval}
}

// RegisterCache registers a cache for monitoring.
func (m *Manager) RegisterCache(cache StatsProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.caches = append(m.caches, cache)
}

// Summaries returns the state of every registered cache in registration
// order.
func (m *Manager) Summaries() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.caches))
	for _, cache := range m.caches {
		stats := cache.Stats()
		summaries = append(summaries, Summary{
			Name:    cache.Name(),
			Len:     cache.Len(),
			Hits:    stats.Hits(),
			Misses:  stats.Misses(),
			HitRate: stats.HitRate(),
		})
	}
	return summaries
}

// StartPeriodicLogging logs the summaries with the logger of ctx every
// interval until ctx is done.
func (m *Manager) StartPeriodicLogging(ctx context.Context) {
	logger := logging.From(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.LogCacheStats(logger)
		}
	}
}

// LogCacheStats logs the summaries once.
func (m *Manager) LogCacheStats(logger logging.Logger) {
	for _, s := range m.Summaries() {
		logger.Infof(
			"CACH: %s len %d hits %d misses %d rate %.2f%%",
			s.Name,
			s.Len,
			s.Hits,
			s.Misses,
			s.HitRate,
		)
	}
}
