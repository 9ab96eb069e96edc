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

package logging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	folioerrors "github.com/yorkie-team/folio/pkg/errors"
)

// OpLogLevel represents the severity level for operation logging.
type OpLogLevel int

const (
	OpLogDebug OpLogLevel = iota
	OpLogInfo
	OpLogWarn
	OpLogError
)

// String returns the string representation of OpLogLevel.
func (l OpLogLevel) String() string {
	switch l {
	case OpLogDebug:
		return "debug"
	case OpLogInfo:
		return "info"
	case OpLogError:
		return "error"
	}
	return "warn"
}

// toOpLogLevel determines the log level of a failed operation from the status
// carried by the error.
func toOpLogLevel(err error) OpLogLevel {
	if err == nil {
		return OpLogDebug
	}

	if errors.Is(err, context.Canceled) {
		return OpLogDebug
	}

	switch folioerrors.StatusOf(err) {
	case folioerrors.ErrCodeInvalidArgument, folioerrors.ErrCodeNotFound, folioerrors.ErrCodeAlreadyExists:
		return OpLogInfo
	case folioerrors.ErrCodeFailedPrecondition:
		// e.g. deleting a pinned version. Worth noting, not alarming.
		return OpLogWarn
	case folioerrors.ErrCodeAborted:
		return OpLogWarn
	case folioerrors.ErrCodeInternal, folioerrors.ErrCodeUnavailable:
		return OpLogError
	default:
		return OpLogWarn
	}
}

// LogOpError logs a failed operation with the level derived from its status.
func LogOpError(logger *zap.SugaredLogger, op string, duration time.Duration, err error) {
	const template = "OP  : %q %s => %q"
	switch toOpLogLevel(err) {
	case OpLogDebug:
		logger.Debugf(template, op, duration, err)
	case OpLogInfo:
		logger.Infof(template, op, duration, err)
	case OpLogError:
		logger.Errorf(template, op, duration, err)
	default:
		logger.Warnf(template, op, duration, err)
	}
}

// LogOpSuccess logs a successful operation at debug level.
func LogOpSuccess(logger *zap.SugaredLogger, op string, duration time.Duration) {
	logger.Debugf("OP  : %q %s", op, duration)
}
