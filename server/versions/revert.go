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
	goerrors "errors"
	"fmt"
	"time"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/errors"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/logging"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
)

// ErrRevertRollbackFailed is returned when a revert failed halfway and the
// steps already applied could not be undone.
var ErrRevertRollbackFailed = errors.Internal("revert rollback failed").WithCode("ErrRevertRollbackFailed")

// DefaultRevertLabel returns the label of a revert version when none is given.
func DefaultRevertLabel(seq int64) string {
	return fmt.Sprintf("Revert to version %d", seq)
}

// Revert copies the content of an earlier version forward. It overwrites the
// live content of the document, appends a version with the source "revert"
// and points the document at it. History is never edited: the reverted-to
// version stays as it was.
//
// The three writes run under the document lock and in one transaction when
// the database has them. Otherwise, if one of them fails, the writes already
// made are undone before returning. Either way no partial revert is
// observable.
func Revert(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	fields *types.RevertFields,
) (result *types.RevertResult, err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "Revert", start, err) }()

	if err := validateID(docID); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, ErrInvalidFields.WithCause(err)
	}
	if err := validateID(fields.ToVersionID); err != nil {
		return nil, err
	}

	ctx = logging.WithFields(ctx, logging.NewField("doc", docID.String()))
	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	unlock, err := lockDocument(ctx, be, docID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
	if err != nil {
		return nil, classify(err)
	}

	target, err := be.DB.FindVersionInfoByID(ctx, docID, fields.ToVersionID)
	if err != nil {
		return nil, classify(err)
	}

	label := fields.Label
	if label == "" {
		label = DefaultRevertLabel(target.Seq)
	}

	created, err := revert(ctx, be, docInfo, target, label, fields.AuthorID)
	if err != nil {
		return nil, err
	}

	be.Metrics.AddRevert(be.Config.Hostname, prometheus.RevertSucceeded)
	logging.From(ctx).Infof(
		"RVRT: %s reverted to seq %d as %s seq %d",
		docID, target.Seq, created.ID, created.Seq,
	)

	return &types.RevertResult{
		NewVersion: created.ToVersion(),
		RevertedTo: target.ToVersion(),
	}, nil
}

// revert applies the writes of a revert in a transaction, or with undo steps
// if the database has no transactions.
func revert(
	ctx context.Context,
	be *backend.Backend,
	docInfo *database.DocInfo,
	target *database.VersionInfo,
	label string,
	authorID string,
) (*database.VersionInfo, error) {
	var created *database.VersionInfo
	wrote := false
	err := be.DB.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = revertSteps(ctx, be, docInfo, target, label, authorID, func(func(context.Context) error) {
			wrote = true
		})
		return err
	})
	if err == nil {
		return created, nil
	}
	if goerrors.Is(err, database.ErrTxUnsupported) {
		return revertWithUndo(ctx, be, docInfo, target, label, authorID)
	}

	result := prometheus.RevertFailed
	if wrote {
		result = prometheus.RevertRolledBack
		logging.From(ctx).Warnf("RVRT: revert of %s rolled back: %v", docInfo.ID, err)
	}
	be.Metrics.AddRevert(be.Config.Hostname, result)
	return nil, classify(err)
}

// revertWithUndo applies the writes of a revert and undoes them on failure.
func revertWithUndo(
	ctx context.Context,
	be *backend.Backend,
	docInfo *database.DocInfo,
	target *database.VersionInfo,
	label string,
	authorID string,
) (*database.VersionInfo, error) {
	var undo []func(ctx context.Context) error
	created, err := revertSteps(ctx, be, docInfo, target, label, authorID, func(step func(context.Context) error) {
		undo = append(undo, step)
	})
	if err == nil {
		return created, nil
	}

	if len(undo) == 0 {
		be.Metrics.AddRevert(be.Config.Hostname, prometheus.RevertFailed)
		return nil, err
	}

	if rollbackErr := rollback(ctx, be.Config.ParseStorageTimeout(), undo); rollbackErr != nil {
		be.Metrics.AddRevert(be.Config.Hostname, prometheus.RevertFailed)
		logging.From(ctx).Errorf("RVRT: rollback of %s failed: %v", docInfo.ID, rollbackErr)
		return nil, ErrRevertRollbackFailed.WithCause(goerrors.Join(err, rollbackErr))
	}

	be.Metrics.AddRevert(be.Config.Hostname, prometheus.RevertRolledBack)
	logging.From(ctx).Warnf("RVRT: revert of %s rolled back: %v", docInfo.ID, err)
	return nil, err
}

// revertSteps makes the three writes of a revert. applied is called with the
// undo of every write that took effect.
func revertSteps(
	ctx context.Context,
	be *backend.Backend,
	docInfo *database.DocInfo,
	target *database.VersionInfo,
	label string,
	authorID string,
	applied func(undo func(ctx context.Context) error),
) (*database.VersionInfo, error) {
	// 01. Overwrite the live content.
	if err := be.DB.UpdateDocInfoContent(ctx, docInfo.ID, target.Content); err != nil {
		return nil, classify(err)
	}
	applied(func(ctx context.Context) error {
		return be.DB.UpdateDocInfoContent(ctx, docInfo.ID, docInfo.Content)
	})

	// 02. Append the revert version.
	created, err := createVersion(ctx, be, docInfo.ID, &types.CreateVersionFields{
		Content:  target.Content,
		Source:   types.VersionSourceRevert,
		Label:    label,
		AuthorID: authorID,
	})
	if err != nil {
		return nil, err
	}
	applied(func(ctx context.Context) error {
		return be.DB.DeleteVersionInfo(ctx, docInfo.ID, created.ID)
	})

	// 03. Point the document at the new version.
	if err := be.DB.UpdateDocInfoCurrentVersion(ctx, docInfo.ID, created.ID); err != nil {
		return nil, classify(err)
	}

	return created, nil
}

// rollback runs the undo steps in reverse order. It does not stop at the
// first failure. The steps run under a fresh deadline.
func rollback(
	ctx context.Context,
	timeout time.Duration,
	undo []func(ctx context.Context) error,
) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs []error
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return goerrors.Join(errs...)
}
