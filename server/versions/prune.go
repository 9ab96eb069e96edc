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
	"fmt"
	"time"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/logging"
)

const (
	// RetentionKey is the lock key of the retention housekeeping task.
	RetentionKey = "housekeeping/retention"
)

// PruneAutoVersions deletes the unpinned auto versions of the document beyond
// the newest keep. Snapshots and the current version are kept as well. It
// returns the number of deleted versions.
func PruneAutoVersions(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	keep int,
) (pruned int, err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "PruneAutoVersions", start, err) }()

	if err := validateID(docID); err != nil {
		return 0, err
	}
	if keep < 0 {
		return 0, ErrInvalidFields
	}

	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	unlock, err := lockDocument(ctx, be, docID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
	if err != nil {
		return 0, classify(err)
	}

	source := types.VersionSourceAuto
	unpinned := false
	infos, _, err := be.DB.FindVersionInfosByPaging(
		ctx,
		docID,
		database.VersionFilter{Source: &source, Pinned: &unpinned},
		keep,
		0,
	)
	if err != nil {
		return 0, classify(err)
	}

	for _, info := range infos {
		if info.IsSnapshot || docInfo.IsCurrentVersion(info.ID) {
			continue
		}

		if err := deleteVersion(ctx, be, docInfo, info); err != nil {
			return pruned, err
		}
		pruned++
	}

	if pruned > 0 {
		be.Metrics.AddPrunedVersions(be.Config.Hostname, pruned)
	}

	return pruned, nil
}

// PruneDocuments applies PruneAutoVersions to at most fetchSize documents
// after lastDocID. It returns the ID to continue from, which is empty once
// every document was visited, the number of visited documents and the number
// of deleted versions.
func PruneDocuments(
	ctx context.Context,
	be *backend.Backend,
	lastDocID types.ID,
	fetchSize int,
	keep int,
) (types.ID, int, int, error) {
	docInfos, err := be.DB.FindNextNDocInfos(ctx, lastDocID, fetchSize)
	if err != nil {
		return lastDocID, 0, 0, classify(err)
	}

	docIDs := make([]types.ID, 0, len(docInfos))
	for _, docInfo := range docInfos {
		docIDs = append(docIDs, docInfo.ID)
	}

	counts, err := backend.FanOut(ctx, be, docIDs, func(ctx context.Context, docID types.ID) (int, error) {
		count, err := PruneAutoVersions(ctx, be, docID, keep)
		if err != nil {
			return 0, fmt.Errorf("prune versions of %s: %w", docID, err)
		}
		return count, nil
	})
	if err != nil {
		logging.From(ctx).Warnf("HSKP: %v", err)
	}

	pruned := 0
	for _, count := range counts {
		pruned += count
	}

	if len(docInfos) < fetchSize {
		return "", len(docInfos), pruned, nil
	}

	return docInfos[len(docInfos)-1].ID, len(docInfos), pruned, nil
}
