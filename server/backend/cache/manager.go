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

// Package cache provides the caches of the backend.
package cache

import (
	"time"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/cache"
)

// DiffKey is the key of a diff between two stored versions. Versions are
// immutable, so the diff never goes stale.
type DiffKey struct {
	DocID            types.ID
	BaseVersionID    types.ID
	CompareVersionID types.ID
}

// CurrentDiffKey is the key of a diff between a stored version and the live
// content, identified by the digest of the content.
type CurrentDiffKey struct {
	DocID         types.ID
	BaseVersionID types.ID
	ContentDigest string
}

// Manager manages all caches used in the backend.
type Manager struct {
	// Diff is used to cache the diffs between stored versions.
	Diff *cache.LRU[DiffKey, *types.VersionDiff]

	// CurrentDiff is used to cache the diffs against the live content. Entries
	// expire because the same content rarely stays live for long.
	CurrentDiff *cache.LRUWithExpires[CurrentDiffKey, *types.VersionDiff]

	// Stats logs the statistics of the caches above.
	Stats *cache.Manager
}

// Options contains configuration for cache manager.
type Options struct {
	DiffCacheSize       int
	CurrentDiffCacheTTL time.Duration
	StatsInterval       time.Duration
}

// New creates a new cache manager.
func New(opts Options) (*Manager, error) {
	diffCache, err := cache.NewLRU[DiffKey, *types.VersionDiff](
		opts.DiffCacheSize,
		"diffs",
	)
	if err != nil {
		return nil, err
	}

	currentDiffCache, err := cache.NewLRUWithExpires[CurrentDiffKey, *types.VersionDiff](
		opts.DiffCacheSize,
		opts.CurrentDiffCacheTTL,
		"current-diffs",
	)
	if err != nil {
		return nil, err
	}

	stats := cache.NewManager(opts.StatsInterval)
	stats.RegisterCache(diffCache)
	stats.RegisterCache(currentDiffCache)

	return &Manager{
		Diff:        diffCache,
		CurrentDiff: currentDiffCache,
		Stats:       stats,
	}, nil
}
