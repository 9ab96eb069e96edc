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

// Package autosave provides debounced saving of an editing session. Each
// session owns its timer, so sessions of different documents or authors never
// share state, and closing a session cancels its pending save.
package autosave

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/rs/xid"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/pkg/text"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/logging"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
	"github.com/yorkie-team/folio/server/versions"
)

// ErrSessionClosed is returned when using a closed session.
var ErrSessionClosed = errors.New("autosave session closed")

// Session is an editing session of an author on a document. Edits are
// reported with Schedule; the latest content is saved as an auto version once
// no edit arrives for the delay.
type Session struct {
	id       string
	be       *backend.Backend
	docID    types.ID
	authorID string
	delay    time.Duration
	logger   logging.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	stopAfter func() bool

	mu      gosync.Mutex
	closed  bool
	timer   *time.Timer
	pending *string

	// saveMu serializes flushes, from taking the pending content to
	// recording lastSaved.
	saveMu    gosync.Mutex
	lastSaved *string
}

// Open opens a session. The session closes itself when ctx is done.
func Open(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	authorID string,
	delay time.Duration,
) *Session {
	id := xid.New().String()
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		id:       id,
		be:       be,
		docID:    docID,
		authorID: authorID,
		delay:    delay,
		logger:   logging.New(id, logging.NewField("doc", docID.String())),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.stopAfter = context.AfterFunc(ctx, s.Close)

	return s
}

// ID returns the ID of this session.
func (s *Session) ID() string {
	return s.id
}

// Schedule replaces the pending content and restarts the delay.
func (s *Session) Schedule(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	s.pending = &content
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)

	return nil
}

// HasPending returns true if content is waiting to be saved.
func (s *Session) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending != nil
}

// Flush saves the pending content now. It returns nil without a version if
// nothing is pending or the save was skipped.
func (s *Session) Flush(ctx context.Context) (*types.Version, error) {
	// pending is taken under saveMu, so concurrent flushes save in the
	// order they took their content and the newest content is saved last.
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}

	content := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if content == nil {
		return nil, nil
	}

	return s.save(ctx, *content)
}

// Close cancels the pending save without saving it. Closing twice is a
// no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.stopAfter()
	s.cancel()
}

// fire saves the pending content on the background service, so that the
// backend waits for the save before it shuts down. The save runs under the
// session's context.
func (s *Session) fire() {
	if err := s.be.Background.AttachGoroutine(func(context.Context) {
		ctx := logging.With(s.ctx, s.logger)
		if _, err := s.Flush(ctx); err != nil && !errors.Is(err, ErrSessionClosed) {
			s.logger.Warnf("SAVE: %s: %v", s.docID, err)
		}
	}, "autosave"); err != nil {
		s.be.Metrics.AddAutosave(s.be.Config.Hostname, prometheus.AutosaveFailed)
		s.logger.Warnf("SAVE: %s: %v", s.docID, err)
	}
}

// save records the content as an auto version unless it is blank or equal to
// the content this session saved last. The caller holds saveMu.
func (s *Session) save(ctx context.Context, content string) (*types.Version, error) {
	hostname := s.be.Config.Hostname
	if text.IsBlank(content) || (s.lastSaved != nil && *s.lastSaved == content) {
		s.be.Metrics.AddAutosave(hostname, prometheus.AutosaveSkipped)
		return nil, nil
	}

	version, err := versions.Create(ctx, s.be, s.docID, &types.CreateVersionFields{
		Content:  content,
		Source:   types.VersionSourceAuto,
		AuthorID: s.authorID,
	})
	if err != nil {
		s.be.Metrics.AddAutosave(hostname, prometheus.AutosaveFailed)
		return nil, err
	}

	s.lastSaved = &content
	s.be.Metrics.AddAutosave(hostname, prometheus.AutosaveSaved)
	s.logger.Infof("SAVE: %s seq %d by %s", s.docID, version.Seq, s.authorID)

	return version, nil
}
