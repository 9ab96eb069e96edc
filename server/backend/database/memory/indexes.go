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

package memory

import (
	"github.com/hashicorp/go-memdb"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/server/backend/database"
)

const (
	tblDocuments = "documents"
	tblVersions  = "versions"
)

const (
	// idxID is the primary index every memdb table must have.
	idxID = "id"

	idxDocID       = "doc_id"
	idxDocIDSeq    = "doc_id_seq"
	idxDocIDSource = "doc_id_source"
	idxDocIDPinned = "doc_id_pinned"
)

func idIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:    idxID,
		Unique:  true,
		Indexer: &memdb.StringFieldIndex{Field: "ID"},
	}
}

// docIDIndex prefixes the given field indexers with the document ID, so
// every version index stays scoped to one document.
func docIDIndex(name string, unique bool, fields ...memdb.Indexer) *memdb.IndexSchema {
	docID := &memdb.StringFieldIndex{Field: "DocID"}
	if len(fields) == 0 {
		return &memdb.IndexSchema{Name: name, Unique: unique, Indexer: docID}
	}

	return &memdb.IndexSchema{
		Name:    name,
		Unique:  unique,
		Indexer: &memdb.CompoundIndex{Indexes: append([]memdb.Indexer{docID}, fields...)},
	}
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblDocuments: {
			Name: tblDocuments,
			Indexes: map[string]*memdb.IndexSchema{
				idxID: idIndex(),
			},
		},
		tblVersions: {
			Name: tblVersions,
			Indexes: map[string]*memdb.IndexSchema{
				idxID:    idIndex(),
				idxDocID: docIDIndex(idxDocID, false),
				// memdb overwrites on a unique index; CreateVersionInfo
				// looks the seq up first and rejects a taken one.
				idxDocIDSeq:    docIDIndex(idxDocIDSeq, true, &memdb.IntFieldIndex{Field: "Seq"}),
				idxDocIDSource: docIDIndex(idxDocIDSource, false, &memdb.StringFieldIndex{Field: "Source"}),
				idxDocIDPinned: docIDIndex(idxDocIDPinned, false, &memdb.BoolFieldIndex{Field: "IsPinned"}),
			},
		},
	},
}

// versionsQuery picks the narrowest index for listing the versions of docID
// that pass filter. The caller still applies filter.Match, since only one
// of its conditions is served by the index.
func versionsQuery(docID types.ID, filter database.VersionFilter) (string, []interface{}) {
	switch {
	case filter.Source != nil:
		return idxDocIDSource, []interface{}{docID.String(), string(*filter.Source)}
	case filter.Pinned != nil:
		return idxDocIDPinned, []interface{}{docID.String(), *filter.Pinned}
	default:
		return idxDocID, []interface{}{docID.String()}
	}
}
