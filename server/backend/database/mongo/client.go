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

// Package mongo implements the database interface using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	gotime "time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/logging"
)

// Client is a client that connects to Mongo DB and reads or saves folio data.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(conf.ConnectionURI).
		SetRegistry(NewRegistry())

	if conf.MonitoringEnabled {
		clientOptions.SetMonitor(newCommandMonitor(conf.ParseSlowQueryThreshold()))
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := ensureIndexes(ctx, client.Database(conf.FolioDatabase)); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.FolioDatabase)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	return nil
}

// ExecTx is not supported. Multi-document transactions need a replica set,
// which a standalone deployment does not have.
func (c *Client) ExecTx(_ context.Context, _ database.TxFn) error {
	return database.ErrTxUnsupported
}

// CreateDocInfo creates a new document with the given content.
func (c *Client) CreateDocInfo(
	ctx context.Context,
	content string,
) (*database.DocInfo, error) {
	now := timeNow()
	info := &database.DocInfo{
		ID:        types.NewID(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := c.collection(ColDocuments).InsertOne(ctx, info); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return info, nil
}

// FindDocInfoByID returns the document of the given ID.
func (c *Client) FindDocInfoByID(
	ctx context.Context,
	docID types.ID,
) (*database.DocInfo, error) {
	result := c.collection(ColDocuments).FindOne(ctx, bson.M{
		"_id": docID,
	})

	info := database.DocInfo{}
	if err := result.Decode(&info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", docID, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document %s: %w", docID, err)
	}

	return &info, nil
}

// FindNextNDocInfos returns at most n documents after lastDocID in ID order.
func (c *Client) FindNextNDocInfos(
	ctx context.Context,
	lastDocID types.ID,
	n int,
) ([]*database.DocInfo, error) {
	filter := bson.M{}
	if lastDocID != "" {
		filter["_id"] = bson.M{"$gt": lastDocID}
	}

	cursor, err := c.collection(ColDocuments).Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(n)),
	)
	if err != nil {
		return nil, fmt.Errorf("find next %d documents after %s: %w", n, lastDocID, err)
	}

	var infos []*database.DocInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	return infos, nil
}

// UpdateDocInfoContent overwrites the live content of the document.
func (c *Client) UpdateDocInfoContent(
	ctx context.Context,
	docID types.ID,
	content string,
) error {
	return c.updateDocInfo(ctx, docID, bson.M{"content": content})
}

// UpdateDocInfoCurrentVersion points the document at the given version.
func (c *Client) UpdateDocInfoCurrentVersion(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
) error {
	return c.updateDocInfo(ctx, docID, bson.M{"current_version_id": versionID})
}

func (c *Client) updateDocInfo(ctx context.Context, docID types.ID, set bson.M) error {
	set["updated_at"] = timeNow()
	result, err := c.collection(ColDocuments).UpdateOne(ctx, bson.M{
		"_id": docID,
	}, bson.M{
		"$set": set,
	})
	if err != nil {
		return fmt.Errorf("update document %s: %w", docID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", docID, database.ErrDocumentNotFound)
	}

	return nil
}

// FindLatestVersionSeq returns the largest sequence of the document's versions.
func (c *Client) FindLatestVersionSeq(
	ctx context.Context,
	docID types.ID,
) (int64, error) {
	result := c.collection(ColVersions).FindOne(ctx, bson.M{
		"doc_id": docID,
	}, options.FindOne().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetProjection(bson.M{"seq": 1}),
	)

	var latest struct {
		Seq int64 `bson:"seq"`
	}
	if err := result.Decode(&latest); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("find latest seq of %s: %w", docID, err)
	}

	return latest.Seq, nil
}

// CreateVersionInfo inserts the given version. A duplicate (doc_id, seq) is
// reported as database.ErrVersionSeqConflict.
func (c *Client) CreateVersionInfo(
	ctx context.Context,
	info *database.VersionInfo,
) (*database.VersionInfo, error) {
	created := info.DeepCopy()
	created.ID = types.NewID()
	created.CreatedAt = timeNow()

	if _, err := c.collection(ColVersions).InsertOne(ctx, created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf(
				"create version %s/%d: %w",
				info.DocID,
				info.Seq,
				database.ErrVersionSeqConflict.WithCause(err),
			)
		}
		return nil, fmt.Errorf("create version: %w", err)
	}

	return created, nil
}

// FindVersionInfoByID returns the version of the given document.
func (c *Client) FindVersionInfoByID(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
) (*database.VersionInfo, error) {
	result := c.collection(ColVersions).FindOne(ctx, bson.M{
		"_id":    versionID,
		"doc_id": docID,
	})

	info := database.VersionInfo{}
	if err := result.Decode(&info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s in %s: %w", versionID, docID, database.ErrVersionNotFound)
		}
		return nil, fmt.Errorf("find version %s: %w", versionID, err)
	}

	return &info, nil
}

// FindVersionInfosByPaging returns a page of the document's versions.
func (c *Client) FindVersionInfosByPaging(
	ctx context.Context,
	docID types.ID,
	filter database.VersionFilter,
	offset int,
	limit int,
) ([]*database.VersionInfo, int, error) {
	query := bson.M{"doc_id": docID}
	if filter.Source != nil {
		query["source"] = *filter.Source
	}
	if filter.Pinned != nil {
		query["is_pinned"] = *filter.Pinned
	}

	total, err := c.collection(ColVersions).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count versions of %s: %w", docID, err)
	}

	opts := options.Find().
		SetSort(bson.D{
			{Key: "is_pinned", Value: -1},
			{Key: "seq", Value: -1},
		}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := c.collection(ColVersions).Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find versions of %s: %w", docID, err)
	}

	var infos []*database.VersionInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, 0, fmt.Errorf("fetch versions: %w", err)
	}

	return infos, int(total), nil
}

// UpdateVersionInfoPinned sets the pin flag of the version.
func (c *Client) UpdateVersionInfoPinned(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
	pinned bool,
) (*database.VersionInfo, error) {
	result := c.collection(ColVersions).FindOneAndUpdate(ctx, bson.M{
		"_id":    versionID,
		"doc_id": docID,
	}, bson.M{
		"$set": bson.M{"is_pinned": pinned},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After))

	info := database.VersionInfo{}
	if err := result.Decode(&info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s in %s: %w", versionID, docID, database.ErrVersionNotFound)
		}
		return nil, fmt.Errorf("update version %s: %w", versionID, err)
	}

	return &info, nil
}

// DeleteVersionInfo deletes the version.
func (c *Client) DeleteVersionInfo(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
) error {
	result, err := c.collection(ColVersions).DeleteOne(ctx, bson.M{
		"_id":    versionID,
		"doc_id": docID,
	})
	if err != nil {
		return fmt.Errorf("delete version %s: %w", versionID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s in %s: %w", versionID, docID, database.ErrVersionNotFound)
	}

	return nil
}

func (c *Client) collection(
	name string,
	opts ...*options.CollectionOptions,
) *mongo.Collection {
	return c.client.
		Database(c.config.FolioDatabase).
		Collection(name, opts...)
}

// timeNow returns the current time in the precision that BSON keeps, so the
// returned infos equal what a later read decodes.
func timeNow() gotime.Time {
	return gotime.Now().UTC().Truncate(gotime.Millisecond)
}
