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

// DocInfo is the part of a document that the version history reads and
// writes. Documents are owned by the document subsystem; the history only
// overwrites Content and CurrentVersionID during a revert.
type DocInfo struct {
	// ID is the unique ID of the document.
	ID types.ID `bson:"_id"`

	// Content is the live content of the document.
	Content string `bson:"content"`

	// CurrentVersionID is the version the live content reflects. Empty means
	// none.
	CurrentVersionID types.ID `bson:"current_version_id"`

	// CreatedAt is the time when the document is created.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the time when the document is updated.
	UpdatedAt time.Time `bson:"updated_at"`
}

// DeepCopy returns a deep copy of this document info.
func (info *DocInfo) DeepCopy() *DocInfo {
	if info == nil {
		return nil
	}

	clone := *info
	return &clone
}

// HasCurrentVersion returns true if the document points at a version.
func (info *DocInfo) HasCurrentVersion() bool {
	return info.CurrentVersionID != ""
}

// IsCurrentVersion returns true if the given version is the current one.
func (info *DocInfo) IsCurrentVersion(versionID types.ID) bool {
	return info.HasCurrentVersion() && info.CurrentVersionID == versionID
}
