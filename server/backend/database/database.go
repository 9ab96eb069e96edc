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

// Package database provides the storage interface of the version history.
package database

import (
	"context"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrVersionNotFound is returned when the version could not be found in
	// the given document.
	ErrVersionNotFound = errors.NotFound("version not found").WithCode("ErrVersionNotFound")

	// ErrVersionSeqConflict is returned when another version of the document
	// already holds the sequence. The caller may retry with a new sequence.
	ErrVersionSeqConflict = errors.Aborted("version sequence conflict").WithCode("ErrVersionSeqConflict")

	// ErrTxUnsupported is returned by ExecTx when the database cannot run
	// writes in a transaction.
	ErrTxUnsupported = errors.Internal("transactions unsupported").WithCode("ErrTxUnsupported")
)

// TxFn is a function that runs within a transaction. Calls made with the
// given context join the transaction.
type TxFn func(ctx context.Context) error

// Database represents database which reads or saves documents and their
// version history.
type Database interface {
	// Close all resources of this database.
	Close() error

	// ExecTx runs fn in a transaction that commits if fn returns nil and
	// rolls back otherwise. It returns ErrTxUnsupported without calling fn
	// if the database has no transactions.
	ExecTx(ctx context.Context, fn TxFn) error

	// CreateDocInfo creates a new document with the given content. Documents
	// are owned by the document subsystem; this is used for seeding.
	CreateDocInfo(
		ctx context.Context,
		content string,
	) (*DocInfo, error)

	// FindDocInfoByID returns the document of the given ID.
	FindDocInfoByID(
		ctx context.Context,
		docID types.ID,
	) (*DocInfo, error)

	// FindNextNDocInfos returns at most n documents whose IDs are greater
	// than lastDocID, in ID order.
	FindNextNDocInfos(
		ctx context.Context,
		lastDocID types.ID,
		n int,
	) ([]*DocInfo, error)

	// UpdateDocInfoContent overwrites the live content of the document.
	UpdateDocInfoContent(
		ctx context.Context,
		docID types.ID,
		content string,
	) error

	// UpdateDocInfoCurrentVersion points the document at the given version.
	// An empty versionID clears the pointer.
	UpdateDocInfoCurrentVersion(
		ctx context.Context,
		docID types.ID,
		versionID types.ID,
	) error

	// FindLatestVersionSeq returns the largest sequence of the document's
	// versions, or 0 if the document has none.
	FindLatestVersionSeq(
		ctx context.Context,
		docID types.ID,
	) (int64, error)

	// CreateVersionInfo inserts the given version. The caller assigns Seq;
	// the database assigns ID and CreatedAt. It returns
	// ErrVersionSeqConflict if (DocID, Seq) is taken.
	CreateVersionInfo(
		ctx context.Context,
		info *VersionInfo,
	) (*VersionInfo, error)

	// FindVersionInfoByID returns the version of the given document.
	FindVersionInfoByID(
		ctx context.Context,
		docID types.ID,
		versionID types.ID,
	) (*VersionInfo, error)

	// FindVersionInfosByPaging returns a page of the document's versions
	// matching the filter, ordered pinned first and then by sequence
	// descending, with the number of all matching versions.
	FindVersionInfosByPaging(
		ctx context.Context,
		docID types.ID,
		filter VersionFilter,
		offset int,
		limit int,
	) ([]*VersionInfo, int, error)

	// UpdateVersionInfoPinned sets the pin flag of the version.
	UpdateVersionInfoPinned(
		ctx context.Context,
		docID types.ID,
		versionID types.ID,
		pinned bool,
	) (*VersionInfo, error)

	// DeleteVersionInfo physically deletes the version. Guards are checked
	// by the caller.
	DeleteVersionInfo(
		ctx context.Context,
		docID types.ID,
		versionID types.ID,
	) error
}
