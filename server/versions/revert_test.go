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

package versions_test

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/errors"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/versions"
)

type txKey struct{}

// txDB runs transactions by journaling the writes made in them and
// replaying the journal backwards on failure.
type txDB struct {
	*faultyDB

	journal  []func(ctx context.Context) error
	txWrites int
	commits  int
}

func (d *txDB) ExecTx(ctx context.Context, fn database.TxFn) error {
	d.journal = nil
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for i := len(d.journal) - 1; i >= 0; i-- {
			if undoErr := d.journal[i](ctx); undoErr != nil {
				return goerrors.Join(err, undoErr)
			}
		}
		return err
	}

	d.commits++
	return nil
}

func (d *txDB) record(ctx context.Context, undo func(ctx context.Context) error) {
	if ctx.Value(txKey{}) != nil {
		d.txWrites++
		d.journal = append(d.journal, undo)
	}
}

func (d *txDB) UpdateDocInfoContent(ctx context.Context, docID types.ID, content string) error {
	before, err := d.Database.FindDocInfoByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := d.faultyDB.UpdateDocInfoContent(ctx, docID, content); err != nil {
		return err
	}

	d.record(ctx, func(ctx context.Context) error {
		return d.Database.UpdateDocInfoContent(ctx, docID, before.Content)
	})
	return nil
}

func (d *txDB) CreateVersionInfo(ctx context.Context, info *database.VersionInfo) (*database.VersionInfo, error) {
	created, err := d.Database.CreateVersionInfo(ctx, info)
	if err != nil {
		return nil, err
	}

	d.record(ctx, func(ctx context.Context) error {
		return d.Database.DeleteVersionInfo(ctx, created.DocID, created.ID)
	})
	return created, nil
}

func (d *txDB) UpdateDocInfoCurrentVersion(ctx context.Context, docID, versionID types.ID) error {
	before, err := d.Database.FindDocInfoByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := d.faultyDB.UpdateDocInfoCurrentVersion(ctx, docID, versionID); err != nil {
		return err
	}

	d.record(ctx, func(ctx context.Context) error {
		return d.Database.UpdateDocInfoCurrentVersion(ctx, docID, before.CurrentVersionID)
	})
	return nil
}

func TestRevert(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end scenario test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "Hello\nWorld")

		v1 := createVersion(t, be, docID, "Hello\nWorld")
		assert.Equal(t, int64(1), v1.Seq)
		assert.False(t, v1.IsSnapshot)

		v2, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content:       "Hello\nGo",
			Source:        types.VersionSourceManual,
			ForceSnapshot: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), v2.Seq)
		assert.True(t, v2.IsSnapshot)

		result, err := versions.Revert(ctx, be, docID, &types.RevertFields{
			ToVersionID: v1.ID,
			AuthorID:    "author",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.NewVersion.Seq)
		assert.Equal(t, types.VersionSourceRevert, result.NewVersion.Source)
		assert.Equal(t, "Revert to version 1", result.NewVersion.Label)
		assert.Equal(t, "Hello\nWorld", result.Content())
		assert.Equal(t, v1.ID, result.RevertedToVersionID())

		docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, result.NewVersionID(), docInfo.CurrentVersionID)
		assert.Equal(t, "Hello\nWorld", docInfo.Content)

		assert.NoError(t, versions.Delete(ctx, be, docID, v1.ID))

		err = versions.Delete(ctx, be, docID, result.NewVersionID())
		assert.ErrorIs(t, err, versions.ErrVersionIsCurrent)
		assert.Equal(t, errors.ErrCodeFailedPrecondition, errors.StatusOf(err))
	})

	t.Run("append only test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")

		v1 := createVersion(t, be, docID, "one")
		createVersion(t, be, docID, "two")
		before := listAll(t, be, docID)

		result, err := versions.Revert(ctx, be, docID, &types.RevertFields{
			ToVersionID: v1.ID,
			Label:       "back to one",
		})
		require.NoError(t, err)
		assert.Equal(t, "back to one", result.NewVersion.Label)

		after := listAll(t, be, docID)
		assert.Len(t, after, len(before)+1)

		reverted, err := versions.Get(ctx, be, docID, v1.ID)
		require.NoError(t, err)
		assert.Equal(t, v1, reverted)
		assert.Equal(t, reverted.Content, result.NewVersion.Content)
	})

	t.Run("revert to a missing version test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")
		otherDocID := newDocument(t, be, "")
		other := createVersion(t, be, otherDocID, "other")

		_, err := versions.Revert(ctx, be, docID, &types.RevertFields{ToVersionID: other.ID})
		assert.ErrorIs(t, err, database.ErrVersionNotFound)
		assert.Empty(t, listAll(t, be, docID))

		_, err = versions.Revert(ctx, be, docID, &types.RevertFields{})
		assert.ErrorIs(t, err, versions.ErrInvalidFields)
	})

	t.Run("roll back a failed revert test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "live")
		v1 := createVersion(t, be, docID, "one")
		createVersion(t, be, docID, "two")

		errDiskFull := goerrors.New("disk full")
		be.DB = &faultyDB{Database: be.DB, currentVersionErr: errDiskFull}

		_, err := versions.Revert(ctx, be, docID, &types.RevertFields{ToVersionID: v1.ID})
		assert.ErrorIs(t, err, errDiskFull)
		assert.ErrorIs(t, err, versions.ErrStorageFailure)
		assert.NotErrorIs(t, err, versions.ErrRevertRollbackFailed)

		docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "live", docInfo.Content)
		assert.False(t, docInfo.HasCurrentVersion())
		assert.Len(t, listAll(t, be, docID), 2)

		latest, err := be.DB.FindLatestVersionSeq(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), latest)
	})

	t.Run("report a failed rollback test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "live")
		v1 := createVersion(t, be, docID, "one")

		errDiskFull := goerrors.New("disk full")
		be.DB = &faultyDB{
			Database:          be.DB,
			currentVersionErr: errDiskFull,
			contentErr:        errDiskFull,
			contentErrOnCall:  2,
		}

		_, err := versions.Revert(ctx, be, docID, &types.RevertFields{ToVersionID: v1.ID})
		assert.ErrorIs(t, err, versions.ErrRevertRollbackFailed)
		assert.ErrorIs(t, err, errDiskFull)
		assert.Equal(t, errors.ErrCodeInternal, errors.StatusOf(err))

		// The appended version is still undone.
		assert.Len(t, listAll(t, be, docID), 1)
	})

	t.Run("revert in a transaction test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "live")
		v1 := createVersion(t, be, docID, "one")

		db := &txDB{faultyDB: &faultyDB{Database: be.DB}}
		be.DB = db

		result, err := versions.Revert(ctx, be, docID, &types.RevertFields{ToVersionID: v1.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, db.commits)
		assert.Equal(t, 3, db.txWrites)

		docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "one", docInfo.Content)
		assert.Equal(t, result.NewVersionID(), docInfo.CurrentVersionID)
	})

	t.Run("roll back a failed revert transaction test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "live")
		v1 := createVersion(t, be, docID, "one")
		createVersion(t, be, docID, "two")

		errDiskFull := goerrors.New("disk full")
		faulty := &faultyDB{Database: be.DB, currentVersionErr: errDiskFull}
		db := &txDB{faultyDB: faulty}
		be.DB = db

		_, err := versions.Revert(ctx, be, docID, &types.RevertFields{ToVersionID: v1.ID})
		assert.ErrorIs(t, err, errDiskFull)
		assert.ErrorIs(t, err, versions.ErrStorageFailure)
		assert.NotErrorIs(t, err, versions.ErrRevertRollbackFailed)
		assert.Zero(t, db.commits)
		assert.Equal(t, float64(1), counterValue(t, be, "folio_versions_reverts_total"))

		// The transaction undid the writes, not the revert itself.
		assert.Equal(t, 1, faulty.contentCalls)

		docInfo, err := be.DB.FindDocInfoByID(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "live", docInfo.Content)
		assert.False(t, docInfo.HasCurrentVersion())
		assert.Len(t, listAll(t, be, docID), 2)
	})

	t.Run("fail before any write test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "live")
		v1 := createVersion(t, be, docID, "one")

		errDiskFull := goerrors.New("disk full")
		be.DB = &faultyDB{Database: be.DB, contentErr: errDiskFull, contentErrOnCall: 1}

		_, err := versions.Revert(ctx, be, docID, &types.RevertFields{ToVersionID: v1.ID})
		assert.ErrorIs(t, err, errDiskFull)
		assert.Len(t, listAll(t, be, docID), 1)
	})
}
