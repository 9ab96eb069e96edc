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

package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap/zapcore"

	"github.com/yorkie-team/folio/server/logging"
)

// commandMonitor logs the commands sent to MongoDB. Commands slower than
// slowThreshold are logged as warnings, the others at debug level.
type commandMonitor struct {
	logger        logging.Logger
	slowThreshold time.Duration
}

// newCommandMonitor returns the driver hooks of a commandMonitor. A zero
// threshold never reports a command as slow.
func newCommandMonitor(slowThreshold time.Duration) *event.CommandMonitor {
	m := &commandMonitor{
		logger:        logging.New("mongo"),
		slowThreshold: slowThreshold,
	}

	return &event.CommandMonitor{
		Started:   m.started,
		Succeeded: m.succeeded,
		Failed:    m.failed,
	}
}

func (m *commandMonitor) started(_ context.Context, evt *event.CommandStartedEvent) {
	// Rendering the command is costly, skip it unless it is written.
	if !logging.Enabled(zapcore.DebugLevel) {
		return
	}
	m.logger.Debugf("MONG: %d %s on %s: %s", evt.RequestID, evt.CommandName, evt.DatabaseName, evt.Command)
}

func (m *commandMonitor) succeeded(_ context.Context, evt *event.CommandSucceededEvent) {
	if m.isSlow(evt.Duration) {
		m.logger.Warnf("MONG: %d %s is slow: %s", evt.RequestID, evt.CommandName, evt.Duration)
		return
	}
	m.logger.Debugf("MONG: %d %s done: %s", evt.RequestID, evt.CommandName, evt.Duration)
}

func (m *commandMonitor) failed(_ context.Context, evt *event.CommandFailedEvent) {
	if isExpectedFailure(evt.Failure) {
		m.logger.Debugf("MONG: %d %s lost a seq race: %s", evt.RequestID, evt.CommandName, evt.Duration)
		return
	}
	m.logger.Warnf("MONG: %d %s failed after %s: %s", evt.RequestID, evt.CommandName, evt.Duration, evt.Failure)
}

func (m *commandMonitor) isSlow(d time.Duration) bool {
	return m.slowThreshold > 0 && d > m.slowThreshold
}

// isExpectedFailure reports a duplicate key on the (doc_id, seq) index of
// versions. It happens when two writers race for the next seq and the loser
// retries with a fresh one.
func isExpectedFailure(failure string) bool {
	return strings.Contains(failure, "E11000") && strings.Contains(failure, ColVersions+" index: "+versionSeqIndex)
}
