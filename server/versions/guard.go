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
	"time"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/errors"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/logging"
)

var (
	// ErrVersionPinned is returned when deleting a pinned version.
	ErrVersionPinned = errors.FailedPrecond("cannot delete pinned version").WithCode("ErrVersionPinned")

	// ErrVersionIsCurrent is returned when deleting the version the document
	// currently reflects.
	ErrVersionIsCurrent = errors.FailedPrecond("cannot delete current version").WithCode("ErrVersionIsCurrent")
)

// TogglePin pins or unpins the version. Any version can be pinned, including
// the current one. The pin flag is the only field that changes after
// creation.
func TogglePin(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	versionID types.ID,
	pinned bool,
) (version *types.Version, err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "TogglePin", start, err) }()

	if err := validateID(docID); err != nil {
		return nil, err
	}
	if err := validateID(versionID); err != nil {
		return nil, err
	}

	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	unlock, err := lockDocument(ctx, be, docID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	info, err := be.DB.UpdateVersionInfoPinned(ctx, docID, versionID, pinned)
	if err != nil {
		return nil, classify(err)
	}

	logging.From(ctx).Infof("VERS: pinned %s of %s: %t", versionID, docID, pinned)
	return info.ToVersion(), nil
}

// Delete deletes the version unless it is pinned or current.
func Delete(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	versionID types.ID,
) (err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "DeleteVersion", start, err) }()

	if err := validateID(docID); err != nil {
		return err
	}
	if err := validateID(versionID); err != nil {
		return err
	}

	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	unlock, err := lockDocument(ctx, be, docID)
	if err != nil {
		return err
	}
	defer unlock()

	docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
	if err != nil {
		return classify(err)
	}

	info, err := be.DB.FindVersionInfoByID(ctx, docID, versionID)
	if err != nil {
		return classify(err)
	}

	if err := deleteVersion(ctx, be, docInfo, info); err != nil {
		return err
	}

	logging.From(ctx).Infof("VERS: deleted %s of %s seq %d", versionID, docID, info.Seq)
	return nil
}

// deleteVersion checks the guards and deletes the version while the caller
// holds the document lock.
func deleteVersion(
	ctx context.Context,
	be *backend.Backend,
	docInfo *database.DocInfo,
	info *database.VersionInfo,
) error {
	if info.IsPinned {
		return ErrVersionPinned
	}
	if docInfo.IsCurrentVersion(info.ID) {
		return ErrVersionIsCurrent
	}

	if err := be.DB.DeleteVersionInfo(ctx, docInfo.ID, info.ID); err != nil {
		return classify(err)
	}

	be.Metrics.AddVersionsDeleted(be.Config.Hostname, 1)
	return nil
}
