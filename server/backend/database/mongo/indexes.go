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

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// ColDocuments is the collection of documents and their live content.
	ColDocuments = "documents"
	// ColVersions is the collection of the versions of every document.
	ColVersions = "versions"
)

const (
	// versionSeqIndex keeps seqs unique within a document. It is the
	// backstop for writers racing past the document lock.
	versionSeqIndex = "doc_id_seq"
	// versionPinnedIndex serves the pinned filter and the retention scan.
	versionPinnedIndex = "doc_id_is_pinned_seq"
	// versionSourceIndex serves the source filter of the history listing.
	versionSourceIndex = "doc_id_source_seq"
	// versionCreatedIndex orders a document's history by creation time.
	versionCreatedIndex = "doc_id_created_at"
	// versionPinnedOnlyIndex filters pinned versions across documents.
	versionPinnedOnlyIndex = "is_pinned"
	// docCurrentIndex finds the documents pointing at a version.
	docCurrentIndex = "current_version_id"
)

// ascending and descending build index keys in declaration order. doc_id
// always comes first, which keeps the versions shardable by document.
func ascending(key string) bson.E  { return bson.E{Key: key, Value: int32(1)} }
func descending(key string) bson.E { return bson.E{Key: key, Value: int32(-1)} }

// indexes returns the indexes of every collection, keyed by collection name.
func indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		ColDocuments: {{
			Keys:    bson.D{ascending("current_version_id")},
			Options: options.Index().SetName(docCurrentIndex),
		}},
		ColVersions: {{
			Keys:    bson.D{ascending("doc_id"), ascending("seq")},
			Options: options.Index().SetName(versionSeqIndex).SetUnique(true),
		}, {
			Keys:    bson.D{ascending("doc_id"), descending("is_pinned"), descending("seq")},
			Options: options.Index().SetName(versionPinnedIndex),
		}, {
			Keys:    bson.D{ascending("doc_id"), ascending("source"), descending("seq")},
			Options: options.Index().SetName(versionSourceIndex),
		}, {
			Keys:    bson.D{ascending("doc_id"), descending("created_at")},
			Options: options.Index().SetName(versionCreatedIndex),
		}, {
			Keys:    bson.D{ascending("is_pinned")},
			Options: options.Index().SetName(versionPinnedOnlyIndex),
		}},
	}
}

// ensureIndexes creates the indexes that are missing. Creating an existing
// index with the same name and keys is a no-op in MongoDB.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{ColDocuments, ColVersions} {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes()[name]); err != nil {
			return fmt.Errorf("create indexes of %s: %w", name, err)
		}
	}
	return nil
}
