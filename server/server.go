/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

// Package server provides the folio server which is the main entry point of
// the version history. The server runs the backend, the housekeeping tasks
// and the profiling server, and exposes the version operations.
package server

import (
	"context"
	gosync "sync"
	"time"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/server/autosave"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/logging"
	"github.com/yorkie-team/folio/server/profiling"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
	"github.com/yorkie-team/folio/server/versions"
)

// housekeepingState is a common structure to hold the state of housekeeping tasks.
type housekeepingState struct {
	gosync.Mutex
	lastID          types.ID
	term            int
	totalCandidates int
	totalProcessed  int
}

// Folio is a server of folio. It records the versions of documents and
// keeps their history tidy in the background.
type Folio struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of Folio.
func New(conf *Config) (*Folio, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(
		conf.Backend,
		conf.Mongo,
		conf.Postgres,
		conf.Redis,
		conf.Housekeeping,
		metrics,
	)
	if err != nil {
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics, be.Cache.Stats)
	}

	return &Folio{
		conf:            conf,
		backend:         be,
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the backend, the housekeeping tasks and the profiling server.
func (f *Folio) Start() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := f.RegisterHousekeepingTasks(f.backend); err != nil {
		return err
	}

	if err := f.backend.Start(context.Background()); err != nil {
		return err
	}

	if f.profilingServer != nil {
		if err := f.profilingServer.Start(); err != nil {
			return err
		}
	}

	return nil
}

// Shutdown shuts down this folio server.
func (f *Folio) Shutdown(graceful bool) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.shutdown {
		return nil
	}

	if f.profilingServer != nil {
		f.profilingServer.Shutdown(graceful)
	}

	if err := f.backend.Shutdown(); err != nil {
		return err
	}

	close(f.shutdownCh)
	f.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (f *Folio) ShutdownCh() <-chan struct{} {
	return f.shutdownCh
}

// RegisterHousekeepingTasks registers housekeeping tasks.
func (f *Folio) RegisterHousekeepingTasks(be *backend.Backend) error {
	if !be.Housekeeping.Config.RetentionEnabled() {
		return nil
	}
	keep := be.Housekeeping.Config.RetentionKeepAuto

	interval, err := be.Housekeeping.Config.ParseInterval()
	if err != nil {
		return err
	}

	retentionState := &housekeepingState{lastID: ""}

	return be.Housekeeping.RegisterTask(versions.RetentionKey, interval, func(ctx context.Context) error {
		retentionState.Lock()
		defer retentionState.Unlock()

		start := time.Now()
		currentLastID := retentionState.lastID
		lastID, candidatesCount, prunedCount, err := versions.PruneDocuments(
			ctx,
			be,
			currentLastID,
			be.Housekeeping.Config.DocumentFetchSize,
			keep,
		)
		if err != nil {
			return err
		}

		retentionState.lastID = lastID
		retentionState.totalCandidates += candidatesCount
		retentionState.totalProcessed += prunedCount

		if prunedCount > 0 || lastID == "" {
			logging.From(ctx).Infof(
				"HSKP: retention #%d %s candidates %d/%d pruned %d/%d %s",
				retentionState.term,
				currentLastID,
				candidatesCount,
				retentionState.totalCandidates,
				prunedCount,
				retentionState.totalProcessed,
				time.Since(start),
			)
		}

		if lastID == "" {
			retentionState.term++
			retentionState.totalCandidates = 0
			retentionState.totalProcessed = 0
		}

		return nil
	})
}

// CreateDocument creates a document with the given content. Documents are
// owned by the document subsystem; this is used for seeding.
func (f *Folio) CreateDocument(ctx context.Context, content string) (*database.DocInfo, error) {
	return f.backend.DB.CreateDocInfo(ctx, content)
}

// CreateVersion appends a version of the document.
func (f *Folio) CreateVersion(
	ctx context.Context,
	docID types.ID,
	fields *types.CreateVersionFields,
) (*types.Version, error) {
	return versions.Create(ctx, f.backend, docID, fields)
}

// ListVersions returns a page of the history of the document.
func (f *Folio) ListVersions(
	ctx context.Context,
	docID types.ID,
	fields *types.ListVersionsFields,
) ([]*types.Version, int, error) {
	return versions.List(ctx, f.backend, docID, fields)
}

// GetVersion returns a version of the document.
func (f *Folio) GetVersion(ctx context.Context, docID, versionID types.ID) (*types.Version, error) {
	return versions.Get(ctx, f.backend, docID, versionID)
}

// GetDiff compares a version with another version or the live content.
func (f *Folio) GetDiff(
	ctx context.Context,
	docID types.ID,
	fields *types.DiffFields,
) (*types.VersionDiff, error) {
	return versions.Diff(ctx, f.backend, docID, fields)
}

// TogglePin pins or unpins a version.
func (f *Folio) TogglePin(
	ctx context.Context,
	docID, versionID types.ID,
	pinned bool,
) (*types.Version, error) {
	return versions.TogglePin(ctx, f.backend, docID, versionID, pinned)
}

// DeleteVersion deletes a version that is neither pinned nor current.
func (f *Folio) DeleteVersion(ctx context.Context, docID, versionID types.ID) error {
	return versions.Delete(ctx, f.backend, docID, versionID)
}

// Revert copies an earlier version forward as a new version.
func (f *Folio) Revert(
	ctx context.Context,
	docID types.ID,
	fields *types.RevertFields,
) (*types.RevertResult, error) {
	return versions.Revert(ctx, f.backend, docID, fields)
}

// OpenAutosave opens an autosave session of the author on the document with
// the configured delay.
func (f *Folio) OpenAutosave(ctx context.Context, docID types.ID, authorID string) *autosave.Session {
	return autosave.Open(ctx, f.backend, docID, authorID, f.conf.Autosave.ParseDelay())
}
