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

package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/yorkie-team/folio/internal/validation"
	"github.com/yorkie-team/folio/pkg/diff"
)

// ErrInvalidVersionSource is returned when the given source is not one of
// auto, manual or revert.
var ErrInvalidVersionSource = errors.New("invalid version source")

// VersionSource is the origin of a version.
type VersionSource string

const (
	// VersionSourceAuto is a version saved by the autosave scheduler.
	VersionSourceAuto VersionSource = "auto"

	// VersionSourceManual is a version saved on purpose by an author.
	VersionSourceManual VersionSource = "manual"

	// VersionSourceRevert is a version appended by reverting to an earlier one.
	VersionSourceRevert VersionSource = "revert"
)

// VersionSources lists every valid source.
var VersionSources = []VersionSource{
	VersionSourceAuto,
	VersionSourceManual,
	VersionSourceRevert,
}

// ParseVersionSource returns the source of the given name.
func ParseVersionSource(name string) (VersionSource, error) {
	source := VersionSource(name)
	if !source.IsValid() {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidVersionSource)
	}
	return source, nil
}

// IsValid returns whether this source is one of the known sources.
func (s VersionSource) IsValid() bool {
	switch s {
	case VersionSourceAuto, VersionSourceManual, VersionSourceRevert:
		return true
	}
	return false
}

// String returns the name of this source.
func (s VersionSource) String() string {
	return string(s)
}

// Version is an immutable snapshot of a document's content, numbered
// sequentially within the document. Only IsPinned changes after creation.
type Version struct {
	// ID is the unique identifier of the version.
	ID ID

	// DocID is the document this version belongs to.
	DocID ID

	// Seq is the sequence of this version in the document, starting at 1.
	Seq int64

	// Content is the full text or markup of the document at this version.
	Content string

	// PlainText is the content without markup.
	PlainText string

	// WordCount is the number of words in PlainText.
	WordCount int

	// IsSnapshot marks the version as a checkpoint.
	IsSnapshot bool

	// Source is the origin of the version.
	Source VersionSource

	// Label is an optional description. Empty means no label.
	Label string

	// IsPinned protects the version from deletion.
	IsPinned bool

	// AuthorID is the author who made the version.
	AuthorID string

	// CreatedAt is the time when the version was created.
	CreatedAt time.Time
}

// VersionDiff is the line diff between two targets of a document.
type VersionDiff struct {
	BaseVersionID    ID
	CompareVersionID ID

	// CompareCurrent is true if the compare side is the live content of the
	// document instead of a stored version.
	CompareCurrent bool

	Stats diff.Stats
	Diffs []diff.Change
}

// RevertResult is the outcome of a revert.
type RevertResult struct {
	// NewVersion is the version appended by the revert.
	NewVersion *Version

	// RevertedTo is the version whose content was copied forward.
	RevertedTo *Version
}

// NewVersionID returns the ID of the appended version.
func (r *RevertResult) NewVersionID() ID {
	return r.NewVersion.ID
}

// RevertedToVersionID returns the ID of the version reverted to.
func (r *RevertResult) RevertedToVersionID() ID {
	return r.RevertedTo.ID
}

// Content returns the content the document now holds.
func (r *RevertResult) Content() string {
	return r.NewVersion.Content
}

func init() {
	if err := validation.Register(
		"version_source",
		"{0} must be one of auto, manual or revert",
		func(level validation.FieldLevel) bool {
			return VersionSource(level.Field().String()).IsValid()
		},
	); err != nil {
		panic(err)
	}
}
