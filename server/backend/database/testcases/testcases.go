/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/errors"
	"github.com/yorkie-team/folio/server/backend/database"
)

const (
	notExistsID = types.ID("000000000000000000000000")
)

// createVersions creates n versions of the given document with sequences
// starting at 1.
func createVersions(
	t *testing.T,
	db database.Database,
	docID types.ID,
	n int,
) []*database.VersionInfo {
	ctx := context.Background()

	var infos []*database.VersionInfo
	for i := 1; i <= n; i++ {
		source := types.VersionSourceManual
		if i%2 == 0 {
			source = types.VersionSourceAuto
		}

		info, err := db.CreateVersionInfo(ctx, &database.VersionInfo{
			DocID:     docID,
			Seq:       int64(i),
			Content:   fmt.Sprintf("content %d", i),
			PlainText: fmt.Sprintf("content %d", i),
			WordCount: 1,
			Source:    source,
			AuthorID:  "author",
		})
		require.NoError(t, err)
		infos = append(infos, info)
	}

	return infos
}

// RunDocInfoTest runs the document collaborator tests for the given db.
func RunDocInfoTest(t *testing.T, db database.Database) {
	t.Run("create and find docInfo test", func(t *testing.T) {
		ctx := context.Background()

		docInfo, err := db.CreateDocInfo(ctx, "Hello")
		assert.NoError(t, err)
		assert.NoError(t, docInfo.ID.Validate())

		found, err := db.FindDocInfoByID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Hello", found.Content)
		assert.False(t, found.HasCurrentVersion())

		_, err = db.FindDocInfoByID(ctx, notExistsID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeNotFound))
	})

	t.Run("update docInfo test", func(t *testing.T) {
		ctx := context.Background()

		docInfo, err := db.CreateDocInfo(ctx, "Hello")
		assert.NoError(t, err)

		assert.NoError(t, db.UpdateDocInfoContent(ctx, docInfo.ID, "World"))
		versionID := types.NewID()
		assert.NoError(t, db.UpdateDocInfoCurrentVersion(ctx, docInfo.ID, versionID))

		found, err := db.FindDocInfoByID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Equal(t, "World", found.Content)
		assert.Equal(t, versionID, found.CurrentVersionID)
		assert.False(t, found.UpdatedAt.Before(docInfo.UpdatedAt))

		assert.NoError(t, db.UpdateDocInfoCurrentVersion(ctx, docInfo.ID, ""))
		found, err = db.FindDocInfoByID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.False(t, found.HasCurrentVersion())

		err = db.UpdateDocInfoContent(ctx, notExistsID, "x")
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
		err = db.UpdateDocInfoCurrentVersion(ctx, notExistsID, versionID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})
}

// RunFindNextNDocInfosTest runs the FindNextNDocInfos test for the given db.
func RunFindNextNDocInfosTest(t *testing.T, db database.Database) {
	t.Run("find next n docInfos test", func(t *testing.T) {
		ctx := context.Background()

		var docIDs []types.ID
		for i := 0; i < 4; i++ {
			docInfo, err := db.CreateDocInfo(ctx, fmt.Sprintf("doc %d", i))
			require.NoError(t, err)
			docIDs = append(docIDs, docInfo.ID)
		}

		infos, err := db.FindNextNDocInfos(ctx, docIDs[0], 2)
		assert.NoError(t, err)
		assert.Len(t, infos, 2)
		assert.Equal(t, docIDs[1], infos[0].ID)
		assert.Equal(t, docIDs[2], infos[1].ID)

		infos, err = db.FindNextNDocInfos(ctx, docIDs[2], 10)
		assert.NoError(t, err)
		assert.Len(t, infos, 1)
		assert.Equal(t, docIDs[3], infos[0].ID)

		infos, err = db.FindNextNDocInfos(ctx, docIDs[3], 10)
		assert.NoError(t, err)
		assert.Empty(t, infos)
	})
}

// RunCreateVersionInfoTest runs the CreateVersionInfo test for the given db.
func RunCreateVersionInfoTest(t *testing.T, db database.Database) {
	t.Run("create versionInfo test", func(t *testing.T) {
		ctx := context.Background()
		docInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)

		seq, err := db.FindLatestVersionSeq(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), seq)

		infos := createVersions(t, db, docInfo.ID, 3)
		for i, info := range infos {
			assert.NoError(t, info.ID.Validate())
			assert.Equal(t, int64(i+1), info.Seq)
			assert.False(t, info.CreatedAt.IsZero())
		}

		seq, err = db.FindLatestVersionSeq(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), seq)
	})

	t.Run("sequence conflict test", func(t *testing.T) {
		ctx := context.Background()
		docInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)
		createVersions(t, db, docInfo.ID, 2)

		_, err = db.CreateVersionInfo(ctx, &database.VersionInfo{
			DocID:   docInfo.ID,
			Seq:     2,
			Content: "duplicate",
			Source:  types.VersionSourceManual,
		})
		assert.ErrorIs(t, err, database.ErrVersionSeqConflict)
		assert.True(t, errors.IsRetryable(err))

		infos, total, err := db.FindVersionInfosByPaging(ctx, docInfo.ID, database.VersionFilter{}, 0, 10)
		assert.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, infos, 2)
	})

	t.Run("sequences are per document test", func(t *testing.T) {
		ctx := context.Background()
		docA, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)
		docB, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)

		createVersions(t, db, docA.ID, 2)
		createVersions(t, db, docB.ID, 1)

		seq, err := db.FindLatestVersionSeq(ctx, docB.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), seq)
	})
}

// RunFindVersionInfoByIDTest runs the FindVersionInfoByID test for the given db.
func RunFindVersionInfoByIDTest(t *testing.T, db database.Database) {
	t.Run("find versionInfo by id test", func(t *testing.T) {
		ctx := context.Background()
		docInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)
		otherDocInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)

		created := createVersions(t, db, docInfo.ID, 1)[0]

		found, err := db.FindVersionInfoByID(ctx, docInfo.ID, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, created.Content, found.Content)
		assert.Equal(t, created.Source, found.Source)
		assert.Equal(t, created.AuthorID, found.AuthorID)

		_, err = db.FindVersionInfoByID(ctx, docInfo.ID, notExistsID)
		assert.ErrorIs(t, err, database.ErrVersionNotFound)

		_, err = db.FindVersionInfoByID(ctx, otherDocInfo.ID, created.ID)
		assert.ErrorIs(t, err, database.ErrVersionNotFound)
	})
}

// RunFindVersionInfosByPagingTest runs the FindVersionInfosByPaging test for the given db.
func RunFindVersionInfosByPagingTest(t *testing.T, db database.Database) {
	t.Run("pinned first then sequence descending test", func(t *testing.T) {
		ctx := context.Background()
		docInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)

		infos := createVersions(t, db, docInfo.ID, 5)
		_, err = db.UpdateVersionInfoPinned(ctx, docInfo.ID, infos[1].ID, true)
		require.NoError(t, err)
		_, err = db.UpdateVersionInfoPinned(ctx, docInfo.ID, infos[3].ID, true)
		require.NoError(t, err)

		found, total, err := db.FindVersionInfosByPaging(ctx, docInfo.ID, database.VersionFilter{}, 0, 10)
		assert.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Equal(t, []int64{4, 2, 5, 3, 1}, seqsOf(found))

		found, total, err = db.FindVersionInfosByPaging(ctx, docInfo.ID, database.VersionFilter{}, 2, 2)
		assert.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Equal(t, []int64{5, 3}, seqsOf(found))

		found, total, err = db.FindVersionInfosByPaging(ctx, docInfo.ID, database.VersionFilter{}, 10, 2)
		assert.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, found)
	})

	t.Run("filter test", func(t *testing.T) {
		ctx := context.Background()
		docInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)

		infos := createVersions(t, db, docInfo.ID, 5)
		_, err = db.UpdateVersionInfoPinned(ctx, docInfo.ID, infos[0].ID, true)
		require.NoError(t, err)

		auto := types.VersionSourceAuto
		found, total, err := db.FindVersionInfosByPaging(
			ctx,
			docInfo.ID,
			database.VersionFilter{Source: &auto},
			0,
			10,
		)
		assert.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []int64{4, 2}, seqsOf(found))

		pinned := true
		found, total, err = db.FindVersionInfosByPaging(
			ctx,
			docInfo.ID,
			database.VersionFilter{Pinned: &pinned},
			0,
			10,
		)
		assert.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []int64{1}, seqsOf(found))
	})

	t.Run("empty history test", func(t *testing.T) {
		ctx := context.Background()
		found, total, err := db.FindVersionInfosByPaging(ctx, notExistsID, database.VersionFilter{}, 0, 10)
		assert.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, found)
	})
}

// RunUpdateVersionInfoPinnedTest runs the UpdateVersionInfoPinned test for the given db.
func RunUpdateVersionInfoPinnedTest(t *testing.T, db database.Database) {
	t.Run("pin only changes the pin flag test", func(t *testing.T) {
		ctx := context.Background()
		docInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)
		created := createVersions(t, db, docInfo.ID, 1)[0]

		pinned, err := db.UpdateVersionInfoPinned(ctx, docInfo.ID, created.ID, true)
		assert.NoError(t, err)
		assert.True(t, pinned.IsPinned)
		assert.Equal(t, created.Seq, pinned.Seq)
		assert.Equal(t, created.Content, pinned.Content)
		assert.WithinDuration(t, created.CreatedAt, pinned.CreatedAt, gotime.Millisecond)

		unpinned, err := db.UpdateVersionInfoPinned(ctx, docInfo.ID, created.ID, false)
		assert.NoError(t, err)
		assert.False(t, unpinned.IsPinned)

		_, err = db.UpdateVersionInfoPinned(ctx, docInfo.ID, notExistsID, true)
		assert.ErrorIs(t, err, database.ErrVersionNotFound)
	})
}

// RunDeleteVersionInfoTest runs the DeleteVersionInfo test for the given db.
func RunDeleteVersionInfoTest(t *testing.T, db database.Database) {
	t.Run("delete versionInfo test", func(t *testing.T) {
		ctx := context.Background()
		docInfo, err := db.CreateDocInfo(ctx, "")
		require.NoError(t, err)
		infos := createVersions(t, db, docInfo.ID, 3)

		assert.NoError(t, db.DeleteVersionInfo(ctx, docInfo.ID, infos[1].ID))

		_, err = db.FindVersionInfoByID(ctx, docInfo.ID, infos[1].ID)
		assert.ErrorIs(t, err, database.ErrVersionNotFound)

		found, total, err := db.FindVersionInfosByPaging(ctx, docInfo.ID, database.VersionFilter{}, 0, 10)
		assert.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []int64{3, 1}, seqsOf(found))

		err = db.DeleteVersionInfo(ctx, docInfo.ID, infos[1].ID)
		assert.ErrorIs(t, err, database.ErrVersionNotFound)

		seq, err := db.FindLatestVersionSeq(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), seq)
	})
}

func seqsOf(infos []*database.VersionInfo) []int64 {
	seqs := make([]int64, 0, len(infos))
	for _, info := range infos {
		seqs = append(seqs, info.Seq)
	}
	return seqs
}

// RunExecTxTest runs the transaction tests for the given db. A db without
// transactions must refuse without running the function.
func RunExecTxTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("unsupported transaction test", func(t *testing.T) {
		called := false
		err := db.ExecTx(ctx, func(ctx context.Context) error {
			called = true
			return nil
		})
		if !goerrors.Is(err, database.ErrTxUnsupported) {
			t.Skip("transactions are supported")
		}
		assert.False(t, called)
	})

	t.Run("roll back a failed transaction test", func(t *testing.T) {
		docInfo, err := db.CreateDocInfo(ctx, "live")
		require.NoError(t, err)

		errAbort := goerrors.New("abort")
		err = db.ExecTx(ctx, func(ctx context.Context) error {
			require.NoError(t, db.UpdateDocInfoContent(ctx, docInfo.ID, "changed"))
			created, err := db.CreateVersionInfo(ctx, &database.VersionInfo{
				DocID:   docInfo.ID,
				Seq:     1,
				Content: "changed",
				Source:  types.VersionSourceManual,
			})
			require.NoError(t, err)

			// A taken seq must not spoil the rest of the transaction.
			_, err = db.CreateVersionInfo(ctx, &database.VersionInfo{
				DocID:   docInfo.ID,
				Seq:     created.Seq,
				Content: "duplicate",
				Source:  types.VersionSourceManual,
			})
			assert.ErrorIs(t, err, database.ErrVersionSeqConflict)
			require.NoError(t, db.UpdateDocInfoCurrentVersion(ctx, docInfo.ID, created.ID))

			return errAbort
		})
		if goerrors.Is(err, database.ErrTxUnsupported) {
			t.Skip("transactions are unsupported")
		}
		assert.ErrorIs(t, err, errAbort)

		found, err := db.FindDocInfoByID(ctx, docInfo.ID)
		require.NoError(t, err)
		assert.Equal(t, "live", found.Content)
		assert.False(t, found.HasCurrentVersion())

		latest, err := db.FindLatestVersionSeq(ctx, docInfo.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), latest)
	})

	t.Run("commit a transaction test", func(t *testing.T) {
		docInfo, err := db.CreateDocInfo(ctx, "live")
		require.NoError(t, err)

		err = db.ExecTx(ctx, func(ctx context.Context) error {
			if err := db.UpdateDocInfoContent(ctx, docInfo.ID, "changed"); err != nil {
				return err
			}
			for seq := int64(1); seq <= 2; seq++ {
				if _, err := db.CreateVersionInfo(ctx, &database.VersionInfo{
					DocID:   docInfo.ID,
					Seq:     seq,
					Content: "changed",
					Source:  types.VersionSourceManual,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if goerrors.Is(err, database.ErrTxUnsupported) {
			t.Skip("transactions are unsupported")
		}
		require.NoError(t, err)

		found, err := db.FindDocInfoByID(ctx, docInfo.ID)
		require.NoError(t, err)
		assert.Equal(t, "changed", found.Content)

		latest, err := db.FindLatestVersionSeq(ctx, docInfo.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), latest)
	})
}
