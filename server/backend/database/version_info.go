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

package database

import (
	"time"

	"github.com/yorkie-team/folio/api/types"
)

// VersionInfo is a row of the append-only version log of a document. Every
// field except IsPinned is immutable once the row is written.
type VersionInfo struct {
	// ID is the unique identifier of the version.
	ID types.ID `bson:"_id"`

	// DocID is the ID of the document that this version is for.
	DocID types.ID `bson:"doc_id"`

	// Seq is the sequence of the version in the document. Sequences are dense
	// and start at 1; (DocID, Seq) is unique.
	Seq int64 `bson:"seq"`

	// Content is the full text or markup of the document at this version.
	Content string `bson:"content"`

	// PlainText is Content without markup.
	PlainText string `bson:"plain_text"`

	// WordCount is the number of words of PlainText.
	WordCount int `bson:"word_count"`

	// IsSnapshot marks the version as a checkpoint.
	IsSnapshot bool `bson:"is_snapshot"`

	// Source is the origin of the version.
	Source types.VersionSource `bson:"source"`

	// Label is an optional description of the version.
	Label string `bson:"label"`

	// IsPinned protects the version from deletion.
	IsPinned bool `bson:"is_pinned"`

	// AuthorID is the author who made the version.
	AuthorID string `bson:"author_id"`

	// CreatedAt is the time when this version was created.
	CreatedAt time.Time `bson:"created_at"`
}

// DeepCopy returns a deep copy of this version info.
func (i *VersionInfo) DeepCopy() *VersionInfo {
	if i == nil {
		return nil
	}

	clone := *i
	return &clone
}

// ToVersion converts this version info to types.Version.
func (i *VersionInfo) ToVersion() *types.Version {
	return &types.Version{
		ID:         i.ID,
		DocID:      i.DocID,
		Seq:        i.Seq,
		Content:    i.Content,
		PlainText:  i.PlainText,
		WordCount:  i.WordCount,
		IsSnapshot: i.IsSnapshot,
		Source:     i.Source,
		Label:      i.Label,
		IsPinned:   i.IsPinned,
		AuthorID:   i.AuthorID,
		CreatedAt:  i.CreatedAt,
	}
}

// VersionFilter narrows the versions of a document. Nil fields match all.
type VersionFilter struct {
	Source *types.VersionSource
	Pinned *bool
}

// Match returns whether the given version passes this filter.
func (f VersionFilter) Match(info *VersionInfo) bool {
	if f.Source != nil && info.Source != *f.Source {
		return false
	}
	if f.Pinned != nil && info.IsPinned != *f.Pinned {
		return false
	}
	return true
}

// LessInHistory reports whether a comes before b in a history listing:
// pinned versions first, then the most recent sequence first.
func LessInHistory(a, b *VersionInfo) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}
	return a.Seq > b.Seq
}
