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
	"math"

	"github.com/yorkie-team/folio/internal/validation"
)

const (
	// DefaultPageSize is the page size used when none is given.
	DefaultPageSize = 20

	// MaxPageSize is the largest page size accepted.
	MaxPageSize = 100

	// CurrentTarget names the live content of a document as a diff target.
	CurrentTarget = "current"
)

var (
	// ErrEmptyDiffTarget is returned when a diff has nothing to compare with.
	ErrEmptyDiffTarget = errors.New("either a compare version or the current content must be given")

	// ErrAmbiguousDiffTarget is returned when a diff names both a compare
	// version and the current content.
	ErrAmbiguousDiffTarget = errors.New("a compare version and the current content are exclusive")

	// ErrPageOutOfRange is returned when the offset of a page does not fit
	// in an int.
	ErrPageOutOfRange = errors.New("page out of range")
)

// CreateVersionFields is a set of fields that use to create a version.
type CreateVersionFields struct {
	// Content is the full text or markup to record.
	Content string `validate:"required,not_blank"`

	// Source is the origin of the version.
	Source VersionSource `validate:"required,version_source"`

	// Label is an optional description of the version.
	Label string `validate:"max=200"`

	// ForceSnapshot marks the version as a checkpoint regardless of its
	// sequence.
	ForceSnapshot bool

	// AuthorID is the author who made the version.
	AuthorID string `validate:"max=128"`
}

// Validate validates the CreateVersionFields.
func (f *CreateVersionFields) Validate() error {
	return validation.ValidateStruct(f)
}

// ListVersionsFields is a set of fields that use to list versions.
type ListVersionsFields struct {
	// Page is the 1-based page number.
	Page int `validate:"min=1"`

	// PageSize is the number of versions on a page.
	PageSize int `validate:"min=1,max=100"`

	// Source filters versions by source when given.
	Source *VersionSource `validate:"omitempty,version_source"`

	// Pinned filters versions by pin state when given.
	Pinned *bool
}

// Offset returns the number of versions to skip.
func (f *ListVersionsFields) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Validate validates the ListVersionsFields.
func (f *ListVersionsFields) Validate() error {
	if err := validation.ValidateStruct(f); err != nil {
		return err
	}

	if f.Page-1 > math.MaxInt/f.PageSize {
		return fmt.Errorf("page %d of size %d: %w", f.Page, f.PageSize, ErrPageOutOfRange)
	}
	return nil
}

// DiffFields is a set of fields that use to diff two targets of a document.
type DiffFields struct {
	// BaseVersionID is the stored version on the base side.
	BaseVersionID ID `validate:"required"`

	// CompareVersionID is the stored version on the compare side.
	CompareVersionID ID

	// CompareCurrent compares with the live content of the document.
	CompareCurrent bool

	// CurrentContent is the live content supplied by the caller. When nil
	// and CompareCurrent is set, the content is read from the document.
	CurrentContent *string
}

// Validate validates the DiffFields.
func (f *DiffFields) Validate() error {
	if err := validation.ValidateStruct(f); err != nil {
		return err
	}

	if f.CompareVersionID == "" && !f.CompareCurrent {
		return ErrEmptyDiffTarget
	}
	if f.CompareVersionID != "" && f.CompareCurrent {
		return ErrAmbiguousDiffTarget
	}

	return nil
}

// RevertFields is a set of fields that use to revert a document.
type RevertFields struct {
	// ToVersionID is the version to copy forward.
	ToVersionID ID `validate:"required"`

	// Label overrides the default "Revert to version N" label.
	Label string `validate:"max=200"`

	// AuthorID is the author who reverts.
	AuthorID string `validate:"max=128"`
}

// Validate validates the RevertFields.
func (f *RevertFields) Validate() error {
	return validation.ValidateStruct(f)
}
