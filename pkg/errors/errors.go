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

package errors

import (
	"errors"
	"fmt"
)

// StatusError is an error that carries a StatusCode and, optionally, a
// stable code naming the sentinel, such as "ErrVersionPinned".
type StatusError interface {
	error
	Status() StatusCode
	Code() string
	WithCode(code string) StatusError
	WithCause(cause error) StatusError
}

type statusError struct {
	err    error
	status StatusCode
	code   string
}

// New creates a StatusError with the given status.
func New(status StatusCode, message string) StatusError {
	return statusError{err: errors.New(message), status: status}
}

// NotFound creates an error with ErrCodeNotFound.
func NotFound(message string) StatusError { return New(ErrCodeNotFound, message) }

// InvalidArgument creates an error with ErrCodeInvalidArgument.
func InvalidArgument(message string) StatusError { return New(ErrCodeInvalidArgument, message) }

// AlreadyExists creates an error with ErrCodeAlreadyExists.
func AlreadyExists(message string) StatusError { return New(ErrCodeAlreadyExists, message) }

// FailedPrecond creates an error with ErrCodeFailedPrecondition, for an
// entity that is not in the state the operation needs.
func FailedPrecond(message string) StatusError { return New(ErrCodeFailedPrecondition, message) }

// Aborted creates an error with ErrCodeAborted, for a lost race with a
// concurrent writer.
func Aborted(message string) StatusError { return New(ErrCodeAborted, message) }

// Internal creates an error with ErrCodeInternal.
func Internal(message string) StatusError { return New(ErrCodeInternal, message) }

// Unavailable creates an error with ErrCodeUnavailable.
func Unavailable(message string) StatusError { return New(ErrCodeUnavailable, message) }

func (e statusError) Error() string      { return e.err.Error() }
func (e statusError) Status() StatusCode { return e.status }
func (e statusError) Code() string       { return e.code }
func (e statusError) Unwrap() error      { return e.err }

// WithCode returns a copy of e named code.
func (e statusError) WithCode(code string) StatusError {
	e.code = code
	return e
}

// WithCause returns a copy of e that wraps cause. Both e and cause stay
// reachable with errors.Is, so a sentinel remains comparable after a storage
// failure is attached to it.
func (e statusError) WithCause(cause error) StatusError {
	if cause == nil {
		return e
	}

	return statusError{
		err:    fmt.Errorf("%w: %w", e, cause),
		status: e.status,
		code:   e.code,
	}
}

// StatusOf returns the status of the first StatusError in the chain of err,
// or 0 when there is none.
func StatusOf(err error) StatusCode {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status()
	}
	return 0
}

// IsStatus reports whether err carries the given status.
func IsStatus(err error, status StatusCode) bool {
	return StatusOf(err) == status
}

// IsRetryable reports whether err may go away when the call is repeated.
func IsRetryable(err error) bool {
	return StatusOf(err).IsRetryable()
}

// ErrorInfo is what a boundary, such as the CLI, reports about an error.
type ErrorInfo struct {
	Status   StatusCode
	Code     string
	Message  string
	IsClient bool
	IsServer bool
}

// ErrorInfoOf collects the ErrorInfo of err.
func ErrorInfoOf(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	info := ErrorInfo{Message: err.Error(), Status: StatusOf(err)}
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		info.Code = statusErr.Code()
	}
	info.IsClient = info.Status.IsClientError()
	info.IsServer = info.Status.IsServerError()

	return info
}

// String renders the message followed by the status and the code, when
// they are known.
func (i ErrorInfo) String() string {
	switch {
	case i.Status == 0:
		return i.Message
	case i.Code == "":
		return fmt.Sprintf("%s (%s)", i.Message, i.Status)
	default:
		return fmt.Sprintf("%s (%s, %s)", i.Message, i.Status, i.Code)
	}
}
