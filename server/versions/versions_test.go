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
	"fmt"
	"math"
	"sort"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/errors"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/backend/housekeeping"
	"github.com/yorkie-team/folio/server/backend/sync"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
	"github.com/yorkie-team/folio/server/versions"
)

func newBackendConf() *backend.Config {
	return &backend.Config{
		SnapshotInterval:            versions.DefaultSnapshotInterval,
		StorageTimeout:              "5s",
		SeqConflictMaxRetries:       3,
		SeqConflictBaseWaitInterval: "1ms",
		SeqConflictMaxWaitInterval:  "5ms",
		DiffCacheSize:               100,
		CurrentDiffCacheTTL:         "1m",
		DiffConcurrency:             2,
		DiffOffloadThreshold:        64,
		Hostname:                    "test",
	}
}

func newBackend(t *testing.T, conf *backend.Config) *backend.Backend {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(conf, nil, nil, nil, &housekeeping.Config{
		Interval:          "1m",
		DocumentFetchSize: 10,
	}, metrics)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})

	return be
}

func newDocument(t *testing.T, be *backend.Backend, content string) types.ID {
	docInfo, err := be.DB.CreateDocInfo(context.Background(), content)
	require.NoError(t, err)
	return docInfo.ID
}

func createVersion(t *testing.T, be *backend.Backend, docID types.ID, content string) *types.Version {
	version, err := versions.Create(context.Background(), be, docID, &types.CreateVersionFields{
		Content:  content,
		Source:   types.VersionSourceManual,
		AuthorID: "author",
	})
	require.NoError(t, err)
	return version
}

func listAll(t *testing.T, be *backend.Backend, docID types.ID) []*types.Version {
	list, _, err := versions.List(context.Background(), be, docID, &types.ListVersionsFields{
		PageSize: types.MaxPageSize,
	})
	require.NoError(t, err)
	return list
}

// counterValue sums the series of the named counter.
func counterValue(t *testing.T, be *backend.Backend, name string) float64 {
	families, err := be.Metrics.Registry().Gather()
	require.NoError(t, err)

	var value float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			value += metric.GetCounter().GetValue()
		}
	}
	return value
}

// faultyDB wraps a database to inject failures.
type faultyDB struct {
	database.Database

	staleLatestSeq    bool
	staleLatestSeqN   int
	currentVersionErr error
	contentErr        error
	contentErrOnCall  int
	contentCalls      int
}

func (d *faultyDB) FindLatestVersionSeq(ctx context.Context, docID types.ID) (int64, error) {
	seq, err := d.Database.FindLatestVersionSeq(ctx, docID)
	if err != nil || seq == 0 {
		return seq, err
	}
	if d.staleLatestSeqN > 0 {
		d.staleLatestSeqN--
		return seq - 1, nil
	}
	if d.staleLatestSeq {
		return seq - 1, nil
	}
	return seq, nil
}

func (d *faultyDB) UpdateDocInfoContent(ctx context.Context, docID types.ID, content string) error {
	d.contentCalls++
	if d.contentErr != nil && d.contentCalls == d.contentErrOnCall {
		return d.contentErr
	}
	return d.Database.UpdateDocInfoContent(ctx, docID, content)
}

func (d *faultyDB) UpdateDocInfoCurrentVersion(ctx context.Context, docID, versionID types.ID) error {
	if d.currentVersionErr != nil {
		return d.currentVersionErr
	}
	return d.Database.UpdateDocInfoCurrentVersion(ctx, docID, versionID)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assign dense sequences and derive fields test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")

		v1, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content:  "<p>Hello world</p><p>你好</p>",
			Source:   types.VersionSourceManual,
			Label:    "first draft",
			AuthorID: "author",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), v1.Seq)
		assert.Equal(t, docID, v1.DocID)
		assert.Equal(t, "Hello world\n\n你好", v1.PlainText)
		assert.Equal(t, 4, v1.WordCount)
		assert.Equal(t, "first draft", v1.Label)
		assert.Equal(t, "author", v1.AuthorID)
		assert.False(t, v1.IsSnapshot)
		assert.False(t, v1.IsPinned)
		assert.NotEmpty(t, v1.ID)
		assert.False(t, v1.CreatedAt.IsZero())

		v2 := createVersion(t, be, docID, "second")
		assert.Equal(t, int64(2), v2.Seq)
	})

	t.Run("mark snapshots test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")

		forced, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content:       "forced",
			Source:        types.VersionSourceManual,
			ForceSnapshot: true,
		})
		require.NoError(t, err)
		assert.True(t, forced.IsSnapshot)

		for seq := int64(2); seq <= 10; seq++ {
			v := createVersion(t, be, docID, fmt.Sprintf("content %d", seq))
			assert.Equal(t, seq == 10, v.IsSnapshot, "seq %d", seq)
		}
	})

	t.Run("reject invalid requests before writing test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")

		_, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content: " \n\t",
			Source:  types.VersionSourceManual,
		})
		assert.ErrorIs(t, err, versions.ErrInvalidFields)
		assert.Equal(t, errors.ErrCodeInvalidArgument, errors.StatusOf(err))

		_, err = versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content: "content",
			Source:  types.VersionSource("imported"),
		})
		assert.Equal(t, errors.ErrCodeInvalidArgument, errors.StatusOf(err))

		_, err = versions.Create(ctx, be, types.ID("not-an-id"), &types.CreateVersionFields{
			Content: "content",
			Source:  types.VersionSourceManual,
		})
		assert.ErrorIs(t, err, versions.ErrInvalidID)

		_, err = versions.Create(ctx, be, types.NewID(), &types.CreateVersionFields{
			Content: "content",
			Source:  types.VersionSourceManual,
		})
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
		assert.Equal(t, errors.ErrCodeNotFound, errors.StatusOf(err))

		assert.Empty(t, listAll(t, be, docID))
	})

	t.Run("concurrent creations yield 1..N test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")
		otherDocID := newDocument(t, be, "")

		const n = 30
		wg := gosync.WaitGroup{}
		for i := range n {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
					Content: fmt.Sprintf("content %d", i),
					Source:  types.VersionSourceAuto,
				})
				assert.NoError(t, err)
			}(i)
			go func(i int) {
				defer wg.Done()
				_, err := versions.Create(ctx, be, otherDocID, &types.CreateVersionFields{
					Content: fmt.Sprintf("other %d", i),
					Source:  types.VersionSourceAuto,
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		for _, id := range []types.ID{docID, otherDocID} {
			var seqs []int
			for _, v := range listAll(t, be, id) {
				seqs = append(seqs, int(v.Seq))
			}
			sort.Ints(seqs)

			expected := make([]int, n)
			for i := range n {
				expected[i] = i + 1
			}
			assert.Equal(t, expected, seqs)
		}
	})

	t.Run("win a sequence race on retry test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")
		createVersion(t, be, docID, "first")
		assert.Equal(t, 0.0, counterValue(t, be, "folio_versions_seq_conflicts_total"))

		be.DB = &faultyDB{Database: be.DB, staleLatestSeqN: 1}

		v, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content: "second",
			Source:  types.VersionSourceManual,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), v.Seq)
		assert.Equal(t, 1.0, counterValue(t, be, "folio_versions_seq_conflicts_total"))

		var seqs []int64
		for _, version := range listAll(t, be, docID) {
			seqs = append(seqs, version.Seq)
		}
		assert.Equal(t, []int64{2, 1}, seqs)
	})

	t.Run("retry a lost sequence race test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")
		createVersion(t, be, docID, "first")

		faulty := &faultyDB{Database: be.DB, staleLatestSeq: true}
		be.DB = faulty

		_, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content: "second",
			Source:  types.VersionSourceManual,
		})
		assert.ErrorIs(t, err, versions.ErrSeqConflictRetriesExhausted)
		assert.ErrorIs(t, err, database.ErrVersionSeqConflict)
		assert.Equal(t, errors.ErrCodeInternal, errors.StatusOf(err))

		faulty.staleLatestSeq = false
		v := createVersion(t, be, docID, "second")
		assert.Equal(t, int64(2), v.Seq)
	})

	t.Run("surface a held lock as unavailable test", func(t *testing.T) {
		conf := newBackendConf()
		conf.StorageTimeout = "50ms"
		be := newBackend(t, conf)
		docID := newDocument(t, be, "")

		locker, err := be.Coordinator.NewLocker(ctx, sync.NewKey("versions", docID.String()))
		require.NoError(t, err)
		require.NoError(t, locker.Lock(ctx))

		_, err = versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content: "blocked",
			Source:  types.VersionSourceManual,
		})
		assert.ErrorIs(t, err, versions.ErrStorageUnavailable)
		assert.True(t, errors.IsRetryable(err))

		require.NoError(t, locker.Unlock(ctx))
		createVersion(t, be, docID, "unblocked")
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("order pinned first then recent first test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")

		var created []*types.Version
		for i := 1; i <= 5; i++ {
			created = append(created, createVersion(t, be, docID, fmt.Sprintf("content %d", i)))
		}
		_, err := versions.TogglePin(ctx, be, docID, created[1].ID, true)
		require.NoError(t, err)

		list, total, err := versions.List(ctx, be, docID, &types.ListVersionsFields{Page: 1, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, list, 3)
		assert.Equal(t, int64(2), list[0].Seq)
		assert.True(t, list[0].IsPinned)
		assert.Equal(t, int64(5), list[1].Seq)
		assert.Equal(t, int64(4), list[2].Seq)

		list, total, err = versions.List(ctx, be, docID, &types.ListVersionsFields{Page: 2, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, list, 2)
		assert.Equal(t, int64(3), list[0].Seq)
		assert.Equal(t, int64(1), list[1].Seq)

		list, total, err = versions.List(ctx, be, docID, &types.ListVersionsFields{Page: 3, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, list)
	})

	t.Run("filter by source and pin test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")

		createVersion(t, be, docID, "manual")
		auto, err := versions.Create(ctx, be, docID, &types.CreateVersionFields{
			Content: "auto",
			Source:  types.VersionSourceAuto,
		})
		require.NoError(t, err)
		_, err = versions.TogglePin(ctx, be, docID, auto.ID, true)
		require.NoError(t, err)

		source := types.VersionSourceAuto
		list, total, err := versions.List(ctx, be, docID, &types.ListVersionsFields{Source: &source})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, auto.ID, list[0].ID)

		unpinned := false
		list, total, err = versions.List(ctx, be, docID, &types.ListVersionsFields{Pinned: &unpinned})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "manual", list[0].Content)
	})

	t.Run("reject invalid paging test", func(t *testing.T) {
		be := newBackend(t, newBackendConf())
		docID := newDocument(t, be, "")

		_, _, err := versions.List(ctx, be, docID, &types.ListVersionsFields{Page: -1})
		assert.ErrorIs(t, err, versions.ErrInvalidFields)

		_, _, err = versions.List(ctx, be, docID, &types.ListVersionsFields{PageSize: types.MaxPageSize + 1})
		assert.ErrorIs(t, err, versions.ErrInvalidFields)

		_, _, err = versions.List(ctx, be, docID, &types.ListVersionsFields{
			Page:     math.MaxInt/types.MaxPageSize + 2,
			PageSize: types.MaxPageSize,
		})
		assert.ErrorIs(t, err, versions.ErrInvalidFields)
		assert.ErrorIs(t, err, types.ErrPageOutOfRange)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))

		list, total, err := versions.List(ctx, be, docID, &types.ListVersionsFields{
			Page:     math.MaxInt / types.MaxPageSize,
			PageSize: types.MaxPageSize,
		})
		assert.NoError(t, err)
		assert.Empty(t, list)
		assert.Equal(t, 0, total)

		_, _, err = versions.List(ctx, be, types.NewID(), &types.ListVersionsFields{})
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	be := newBackend(t, newBackendConf())
	docID := newDocument(t, be, "")
	otherDocID := newDocument(t, be, "")
	created := createVersion(t, be, docID, "content")

	t.Run("get version test", func(t *testing.T) {
		found, err := versions.Get(ctx, be, docID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, found)
	})

	t.Run("version of another document test", func(t *testing.T) {
		_, err := versions.Get(ctx, be, otherDocID, created.ID)
		assert.ErrorIs(t, err, database.ErrVersionNotFound)
		assert.Equal(t, errors.ErrCodeNotFound, errors.StatusOf(err))
	})

	t.Run("malformed id test", func(t *testing.T) {
		_, err := versions.Get(ctx, be, docID, types.ID("zz"))
		assert.ErrorIs(t, err, versions.ErrInvalidID)
	})
}
