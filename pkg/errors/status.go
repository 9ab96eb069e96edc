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

// Package errors provides status-coded errors shared by the storage layer,
// the version operations and the CLI. The boundary layer maps the status of
// an error to a user-facing message or status code.
package errors

import "fmt"

// StatusCode represents the kind of an error. The values follow the Connect
// protocol codes so that a transport can translate them without a table.
type StatusCode int

const (
	// ErrCodeInvalidArgument indicates that the caller specified an invalid
	// argument, such as blank content or a malformed identifier.
	ErrCodeInvalidArgument StatusCode = 3

	// ErrCodeNotFound indicates that a document or a version was not found.
	ErrCodeNotFound StatusCode = 5

	// ErrCodeAlreadyExists indicates that the entity that a caller attempted
	// to create already exists.
	ErrCodeAlreadyExists StatusCode = 6

	// ErrCodeFailedPrecondition indicates that the operation was rejected
	// because the entity is not in a state required for it, e.g. deleting a
	// pinned version.
	ErrCodeFailedPrecondition StatusCode = 9

	// ErrCodeAborted indicates that the operation lost a race with a
	// concurrent writer. The operation can be retried.
	ErrCodeAborted StatusCode = 10

	// ErrCodeInternal indicates that the storage or an invariant failed.
	ErrCodeInternal StatusCode = 13

	// ErrCodeUnavailable indicates that the storage did not answer in time.
	// This is usually temporary, so callers can back off and retry.
	ErrCodeUnavailable StatusCode = 14
)

// String returns the string representation of the error code.
func (c StatusCode) String() string {
	switch c {
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeAlreadyExists:
		return "already_exists"
	case ErrCodeFailedPrecondition:
		return "failed_precondition"
	case ErrCodeAborted:
		return "aborted"
	case ErrCodeInternal:
		return "internal"
	case ErrCodeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// IsClientError returns true if the error code represents a caller-side error.
func (c StatusCode) IsClientError() bool {
	switch c {
	case ErrCodeInvalidArgument, ErrCodeNotFound, ErrCodeAlreadyExists,
		ErrCodeFailedPrecondition:
		return true
	default:
		return false
	}
}

// IsServerError returns true if the error code represents a server-side error.
func (c StatusCode) IsServerError() bool {
	switch c {
	case ErrCodeAborted, ErrCodeInternal, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}

// IsRetryable returns true if the same request may succeed when sent again.
func (c StatusCode) IsRetryable() bool {
	return c == ErrCodeAborted || c == ErrCodeUnavailable
}
