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

// Package versions provides the version history of documents: creating and
// listing versions, diffing them, pinning, guarded deletion and revert.
package versions

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/errors"
	"github.com/yorkie-team/folio/pkg/retry"
	"github.com/yorkie-team/folio/pkg/text"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/backend/sync"
	"github.com/yorkie-team/folio/server/logging"
)

const (
	// docLockKeyPrefix is the prefix of the lock that serializes the
	// mutations of a document's history.
	docLockKeyPrefix = "versions"

	okCode = "ok"
)

var (
	// ErrInvalidID is returned when a document or version ID is malformed.
	ErrInvalidID = errors.InvalidArgument("invalid id").WithCode("ErrInvalidID")

	// ErrInvalidFields is returned when the fields of a request are invalid.
	ErrInvalidFields = errors.InvalidArgument("invalid fields").WithCode("ErrInvalidFields")

	// ErrStorageUnavailable is returned when the storage or the document lock
	// does not answer within the storage timeout.
	ErrStorageUnavailable = errors.Unavailable("storage unavailable").WithCode("ErrStorageUnavailable")

	// ErrStorageFailure is returned when the storage fails.
	ErrStorageFailure = errors.Internal("storage failure").WithCode("ErrStorageFailure")

	// ErrSeqConflictRetriesExhausted is returned when a version creation keeps
	// losing the sequence race.
	ErrSeqConflictRetriesExhausted = errors.Internal(
		"version sequence conflict retries exhausted",
	).WithCode("ErrSeqConflictRetriesExhausted")
)

// Create appends a new version of the given document. The sequence is the
// largest sequence of the document plus one, and the version is a snapshot
// if it is forced or its sequence falls on the snapshot interval.
func Create(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	fields *types.CreateVersionFields,
) (version *types.Version, err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "CreateVersion", start, err) }()

	if err := validateID(docID); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, ErrInvalidFields.WithCause(err)
	}

	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	unlock, err := lockDocument(ctx, be, docID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := be.DB.FindDocInfoByID(ctx, docID); err != nil {
		return nil, classify(err)
	}

	info, err := createVersion(ctx, be, docID, fields)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Infof(
		"VERS: created %s of %s seq %d source %s snapshot %t",
		info.ID, docID, info.Seq, info.Source, info.IsSnapshot,
	)

	return info.ToVersion(), nil
}

// createVersion inserts the version while the caller holds the document
// lock. The lock serializes this server's writers; a writer elsewhere that
// takes the same sequence is rejected by the unique (doc_id, seq) index and
// retried with backoff.
func createVersion(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	fields *types.CreateVersionFields,
) (*database.VersionInfo, error) {
	plainText := text.PlainText(fields.Content)
	policy := SnapshotPolicy{Interval: be.Config.SnapshotInterval}

	var created *database.VersionInfo
	err := retry.WithExponentialBackoff(
		ctx,
		be.Config.SeqConflictMaxRetries,
		be.Config.ParseSeqConflictBaseWaitInterval(),
		be.Config.ParseSeqConflictMaxWaitInterval(),
		func() error {
			latest, err := be.DB.FindLatestVersionSeq(ctx, docID)
			if err != nil {
				return err
			}

			seq := latest + 1
			info, err := be.DB.CreateVersionInfo(ctx, &database.VersionInfo{
				DocID:      docID,
				Seq:        seq,
				Content:    fields.Content,
				PlainText:  plainText,
				WordCount:  text.CountWords(plainText),
				IsSnapshot: policy.ShouldSnapshot(seq, fields.ForceSnapshot),
				Source:     fields.Source,
				Label:      fields.Label,
				AuthorID:   fields.AuthorID,
			})
			if err != nil {
				if goerrors.Is(err, database.ErrVersionSeqConflict) {
					be.Metrics.AddSeqConflict(be.Config.Hostname)
					logging.From(ctx).Warnf("VERS: seq %d of %s is taken, retrying", seq, docID)
				}
				return err
			}

			created = info
			return nil
		},
		func(err error) bool {
			return goerrors.Is(err, database.ErrVersionSeqConflict)
		},
	)
	if err != nil {
		if goerrors.Is(err, retry.ErrRetriesExhausted) {
			return nil, ErrSeqConflictRetriesExhausted.WithCause(err)
		}
		return nil, classify(err)
	}

	be.Metrics.AddVersionCreated(be.Config.Hostname, created.Source)
	return created, nil
}

// List returns a page of the versions of the given document with the number
// of all versions matching the filter. Pinned versions come first, then the
// most recent sequence first.
func List(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	fields *types.ListVersionsFields,
) (versions []*types.Version, total int, err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "ListVersions", start, err) }()

	if err := validateID(docID); err != nil {
		return nil, 0, err
	}

	page := *fields
	if page.Page == 0 {
		page.Page = 1
	}
	if page.PageSize == 0 {
		page.PageSize = types.DefaultPageSize
	}
	if err := page.Validate(); err != nil {
		return nil, 0, ErrInvalidFields.WithCause(err)
	}

	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	if _, err := be.DB.FindDocInfoByID(ctx, docID); err != nil {
		return nil, 0, classify(err)
	}

	infos, total, err := be.DB.FindVersionInfosByPaging(
		ctx,
		docID,
		database.VersionFilter{Source: page.Source, Pinned: page.Pinned},
		page.Offset(),
		page.PageSize,
	)
	if err != nil {
		return nil, 0, classify(err)
	}

	versions = make([]*types.Version, 0, len(infos))
	for _, info := range infos {
		versions = append(versions, info.ToVersion())
	}

	return versions, total, nil
}

// Get returns the version of the given document.
func Get(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	versionID types.ID,
) (version *types.Version, err error) {
	start := time.Now()
	defer func() { observe(ctx, be, "GetVersion", start, err) }()

	if err := validateID(docID); err != nil {
		return nil, err
	}
	if err := validateID(versionID); err != nil {
		return nil, err
	}

	ctx, cancel := withStorageTimeout(ctx, be)
	defer cancel()

	info, err := be.DB.FindVersionInfoByID(ctx, docID, versionID)
	if err != nil {
		return nil, classify(err)
	}

	return info.ToVersion(), nil
}

// lockDocument takes the lock of the document's history. The returned
// function releases it.
func lockDocument(ctx context.Context, be *backend.Backend, docID types.ID) (func(), error) {
	release, err := sync.Acquire(ctx, be.Coordinator, sync.NewKey(docLockKeyPrefix, docID.String()))
	if err != nil {
		return nil, classify(err)
	}

	return func() {
		// ctx may be done already; the lock must be released regardless.
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logging.From(ctx).Errorf("unlock %s: %v", docID, err)
		}
	}, nil
}

// withStorageTimeout bounds the storage calls and lock waits of an operation.
func withStorageTimeout(ctx context.Context, be *backend.Backend) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, be.Config.ParseStorageTimeout())
}

func validateID(id types.ID) error {
	if err := id.Validate(); err != nil {
		return ErrInvalidID.WithCause(err)
	}
	return nil
}

// classify gives a status to the errors of the storage layer. Errors that
// already carry one, such as ErrVersionNotFound, pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.StatusOf(err) != 0 {
		return err
	}
	if goerrors.Is(err, context.DeadlineExceeded) {
		return ErrStorageUnavailable.WithCause(err)
	}
	if goerrors.Is(err, context.Canceled) {
		return err
	}

	return ErrStorageFailure.WithCause(err)
}

// observe logs the outcome of the operation and counts it.
func observe(ctx context.Context, be *backend.Backend, op string, start time.Time, err error) {
	logger := logging.From(ctx)
	code := okCode
	if err != nil {
		code = errors.StatusOf(err).String()
		logging.LogOpError(logger, op, time.Since(start), err)
	} else {
		logging.LogOpSuccess(logger, op, time.Since(start))
	}

	be.Metrics.AddOpHandled(op, code)
}
