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

package versions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/diff"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/cache"
)

// Diff compares a stored version of the document with another stored version
// or with the live content. The returned diff may be shared with the cache
// and must not be modified.
func Diff(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	fields *types.DiffFields,
) (result *types.VersionDiff, err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "GetDiff", start, err) }()

	if err := validateID(docID); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, ErrInvalidFields.WithCause(err)
	}
	if err := validateID(fields.BaseVersionID); err != nil {
		return nil, err
	}
	if !fields.CompareCurrent {
		if err := validateID(fields.CompareVersionID); err != nil {
			return nil, err
		}
	}

	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	base, err := be.DB.FindVersionInfoByID(ctx, docID, fields.BaseVersionID)
	if err != nil {
		return nil, classify(err)
	}

	if fields.CompareCurrent {
		return diffWithCurrent(ctx, be, docID, base.ID, base.Content, fields.CurrentContent)
	}

	compare, err := be.DB.FindVersionInfoByID(ctx, docID, fields.CompareVersionID)
	if err != nil {
		return nil, classify(err)
	}

	key := cache.DiffKey{
		DocID:            docID,
		BaseVersionID:    base.ID,
		CompareVersionID: compare.ID,
	}
	if cached, ok := be.Cache.Diff.Get(key); ok {
		be.Metrics.AddDiffCacheLookup(true)
		return cached, nil
	}
	be.Metrics.AddDiffCacheLookup(false)

	changes, stats, err := computeDiff(ctx, be, base.Content, compare.Content)
	if err != nil {
		return nil, err
	}

	result = &types.VersionDiff{
		BaseVersionID:    base.ID,
		CompareVersionID: compare.ID,
		Stats:            stats,
		Diffs:            changes,
	}
	be.Cache.Diff.Add(key, result)

	return result, nil
}

// diffWithCurrent compares the base with the given live content, or with the
// content of the document when none is given.
func diffWithCurrent(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	baseID types.ID,
	baseContent string,
	currentContent *string,
) (*types.VersionDiff, error) {
	var content string
	if currentContent != nil {
		content = *currentContent
	} else {
		docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
		if err != nil {
			return nil, classify(err)
		}
		content = docInfo.Content
	}

	key := cache.CurrentDiffKey{
		DocID:         docID,
		BaseVersionID: baseID,
		ContentDigest: digest(content),
	}
	if cached, ok := be.Cache.CurrentDiff.Get(key); ok {
		be.Metrics.AddDiffCacheLookup(true)
		return cached, nil
	}
	be.Metrics.AddDiffCacheLookup(false)

	changes, stats, err := computeDiff(ctx, be, baseContent, content)
	if err != nil {
		return nil, err
	}

	result := &types.VersionDiff{
		BaseVersionID:  baseID,
		CompareCurrent: true,
		Stats:          stats,
		Diffs:          changes,
	}
	be.Cache.CurrentDiff.Add(key, result)

	return result, nil
}

// computeDiff computes the line diff of the two texts. Large texts wait for a
// slot so that they do not starve the other operations of CPU.
func computeDiff(
	ctx context.Context,
	be *backend.Backend,
	base, compare string,
) ([]diff.Change, diff.Stats, error) {
	if len(base)+len(compare) > be.Config.DiffOffloadThreshold {
		if err := be.DiffSemaphore.Acquire(ctx, 1); err != nil {
			return nil, diff.Stats{}, classify(err)
		}
		defer be.DiffSemaphore.Release(1)
	}

	start := time.Now()
	changes := diff.Compute(base, compare)
	stats := diff.ComputeStats(changes)
	be.Metrics.ObserveDiffDurationSeconds(time.Since(start).Seconds())

	return changes, stats, nil
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
