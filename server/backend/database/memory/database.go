/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

// Package memory implements the database interface using in-memory database.
package memory

import (
	"context"
	"fmt"
	"sort"
	gotime "time"

	"github.com/hashicorp/go-memdb"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/server/backend/database"
)

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// ExecTx is not supported. Each write commits its own memdb transaction.
func (d *DB) ExecTx(_ context.Context, _ database.TxFn) error {
	return database.ErrTxUnsupported
}

// CreateDocInfo creates a new document with the given content.
func (d *DB) CreateDocInfo(
	_ context.Context,
	content string,
) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	now := gotime.Now()
	info := &database.DocInfo{
		ID:        types.NewID(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := txn.Insert(tblDocuments, info); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// FindDocInfoByID returns the document of the given ID.
func (d *DB) FindDocInfoByID(
	_ context.Context,
	docID types.ID,
) (*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	info, err := findDocInfo(txn, docID)
	if err != nil {
		return nil, err
	}

	return info.DeepCopy(), nil
}

// FindNextNDocInfos returns at most n documents after lastDocID in ID order.
func (d *DB) FindNextNDocInfos(
	_ context.Context,
	lastDocID types.ID,
	n int,
) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.LowerBound(tblDocuments, idxID, lastDocID.String())
	if err != nil {
		return nil, fmt.Errorf("find next %d documents after %s: %w", n, lastDocID, err)
	}

	var infos []*database.DocInfo
	for raw := iter.Next(); raw != nil && len(infos) < n; raw = iter.Next() {
		info := raw.(*database.DocInfo)
		if info.ID == lastDocID {
			continue
		}
		infos = append(infos, info.DeepCopy())
	}

	return infos, nil
}

// UpdateDocInfoContent overwrites the live content of the document.
func (d *DB) UpdateDocInfoContent(
	_ context.Context,
	docID types.ID,
	content string,
) error {
	return d.updateDocInfo(docID, func(info *database.DocInfo) {
		info.Content = content
	})
}

// UpdateDocInfoCurrentVersion points the document at the given version.
func (d *DB) UpdateDocInfoCurrentVersion(
	_ context.Context,
	docID types.ID,
	versionID types.ID,
) error {
	return d.updateDocInfo(docID, func(info *database.DocInfo) {
		info.CurrentVersionID = versionID
	})
}

func (d *DB) updateDocInfo(docID types.ID, update func(info *database.DocInfo)) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findDocInfo(txn, docID)
	if err != nil {
		return err
	}

	// stored objects are shared with readers, so update a copy.
	updated := info.DeepCopy()
	update(updated)
	updated.UpdatedAt = gotime.Now()
	if err := txn.Insert(tblDocuments, updated); err != nil {
		return fmt.Errorf("update document %s: %w", docID, err)
	}

	txn.Commit()
	return nil
}

// FindLatestVersionSeq returns the largest sequence of the document's versions.
func (d *DB) FindLatestVersionSeq(
	_ context.Context,
	docID types.ID,
) (int64, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	return latestVersionSeq(txn, docID)
}

// CreateVersionInfo inserts the given version.
func (d *DB) CreateVersionInfo(
	_ context.Context,
	info *database.VersionInfo,
) (*database.VersionInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	// unique indexes of memdb overwrite instead of rejecting, so the
	// (doc_id, seq) constraint is checked inside the write transaction.
	raw, err := txn.First(tblVersions, idxDocIDSeq, info.DocID.String(), info.Seq)
	if err != nil {
		return nil, fmt.Errorf("find version %s/%d: %w", info.DocID, info.Seq, err)
	}
	if raw != nil {
		return nil, fmt.Errorf("create version %s/%d: %w", info.DocID, info.Seq, database.ErrVersionSeqConflict)
	}

	created := info.DeepCopy()
	created.ID = types.NewID()
	created.CreatedAt = gotime.Now()
	if err := txn.Insert(tblVersions, created); err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	txn.Commit()
	return created.DeepCopy(), nil
}

// FindVersionInfoByID returns the version of the given document.
func (d *DB) FindVersionInfoByID(
	_ context.Context,
	docID types.ID,
	versionID types.ID,
) (*database.VersionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	info, err := findVersionInfo(txn, docID, versionID)
	if err != nil {
		return nil, err
	}

	return info.DeepCopy(), nil
}

// FindVersionInfosByPaging returns a page of the document's versions.
func (d *DB) FindVersionInfosByPaging(
	_ context.Context,
	docID types.ID,
	filter database.VersionFilter,
	offset int,
	limit int,
) ([]*database.VersionInfo, int, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	index, args := versionsQuery(docID, filter)
	iter, err := txn.Get(tblVersions, index, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("find versions of %s: %w", docID, err)
	}

	var infos []*database.VersionInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.VersionInfo)
		if filter.Match(info) {
			infos = append(infos, info)
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		return database.LessInHistory(infos[i], infos[j])
	})

	total := len(infos)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}

	page := make([]*database.VersionInfo, 0, end-start)
	for _, info := range infos[start:end] {
		page = append(page, info.DeepCopy())
	}

	return page, total, nil
}

// UpdateVersionInfoPinned sets the pin flag of the version.
func (d *DB) UpdateVersionInfoPinned(
	_ context.Context,
	docID types.ID,
	versionID types.ID,
	pinned bool,
) (*database.VersionInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findVersionInfo(txn, docID, versionID)
	if err != nil {
		return nil, err
	}

	updated := info.DeepCopy()
	updated.IsPinned = pinned
	if err := txn.Insert(tblVersions, updated); err != nil {
		return nil, fmt.Errorf("update version %s: %w", versionID, err)
	}

	txn.Commit()
	return updated.DeepCopy(), nil
}

// DeleteVersionInfo deletes the version.
func (d *DB) DeleteVersionInfo(
	_ context.Context,
	docID types.ID,
	versionID types.ID,
) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findVersionInfo(txn, docID, versionID)
	if err != nil {
		return err
	}

	if err := txn.Delete(tblVersions, info); err != nil {
		return fmt.Errorf("delete version %s: %w", versionID, err)
	}

	txn.Commit()
	return nil
}

func findDocInfo(txn *memdb.Txn, docID types.ID) (*database.DocInfo, error) {
	raw, err := txn.First(tblDocuments, idxID, docID.String())
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", docID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", docID, database.ErrDocumentNotFound)
	}

	return raw.(*database.DocInfo), nil
}

func findVersionInfo(txn *memdb.Txn, docID, versionID types.ID) (*database.VersionInfo, error) {
	raw, err := txn.First(tblVersions, idxID, versionID.String())
	if err != nil {
		return nil, fmt.Errorf("find version %s: %w", versionID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", versionID, database.ErrVersionNotFound)
	}

	info := raw.(*database.VersionInfo)
	if info.DocID != docID {
		return nil, fmt.Errorf("%s in %s: %w", versionID, docID, database.ErrVersionNotFound)
	}

	return info, nil
}

// latestVersionSeq scans the versions of the document. The integer indexer
// of memdb is not order preserving, so a reverse bound on (doc_id, seq)
// cannot be used here.
func latestVersionSeq(txn *memdb.Txn, docID types.ID) (int64, error) {
	iter, err := txn.Get(tblVersions, idxDocID, docID.String())
	if err != nil {
		return 0, fmt.Errorf("find versions of %s: %w", docID, err)
	}

	var latest int64
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		if seq := raw.(*database.VersionInfo).Seq; seq > latest {
			latest = seq
		}
	}

	return latest, nil
}
