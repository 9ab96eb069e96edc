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
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode_String(t *testing.T) {
	tests := []struct {
		name string
		code StatusCode
		want string
	}{
		{"InvalidArgument", ErrCodeInvalidArgument, "invalid_argument"},
		{"NotFound", ErrCodeNotFound, "not_found"},
		{"AlreadyExists", ErrCodeAlreadyExists, "already_exists"},
		{"FailedPrecondition", ErrCodeFailedPrecondition, "failed_precondition"},
		{"Aborted", ErrCodeAborted, "aborted"},
		{"Internal", ErrCodeInternal, "internal"},
		{"Unavailable", ErrCodeUnavailable, "unavailable"},
		{"Unknown", StatusCode(999), "code_999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestStatusCode_Category(t *testing.T) {
	clientCodes := []StatusCode{
		ErrCodeInvalidArgument,
		ErrCodeNotFound,
		ErrCodeAlreadyExists,
		ErrCodeFailedPrecondition,
	}
	serverCodes := []StatusCode{
		ErrCodeAborted,
		ErrCodeInternal,
		ErrCodeUnavailable,
	}

	for _, code := range clientCodes {
		t.Run(fmt.Sprintf("ClientError_%s", code), func(t *testing.T) {
			assert.True(t, code.IsClientError())
			assert.False(t, code.IsServerError())
		})
	}

	for _, code := range serverCodes {
		t.Run(fmt.Sprintf("ServerError_%s", code), func(t *testing.T) {
			assert.False(t, code.IsClientError())
			assert.True(t, code.IsServerError())
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  StatusError
		want StatusCode
	}{
		{"NotFound", NotFound("version not found"), ErrCodeNotFound},
		{"InvalidArgument", InvalidArgument("blank content"), ErrCodeInvalidArgument},
		{"AlreadyExists", AlreadyExists("exists"), ErrCodeAlreadyExists},
		{"FailedPrecond", FailedPrecond("cannot delete pinned version"), ErrCodeFailedPrecondition},
		{"Aborted", Aborted("sequence conflict"), ErrCodeAborted},
		{"Internal", Internal("storage failure"), ErrCodeInternal},
		{"Unavailable", Unavailable("storage timeout"), ErrCodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
			assert.Empty(t, tt.err.Code())
		})
	}
}

func TestStatusOf(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, StatusOf(NotFound("test")))
	})

	t.Run("wrapped status error", func(t *testing.T) {
		err := fmt.Errorf("find version: %w", NotFound("version not found"))
		assert.Equal(t, ErrCodeNotFound, StatusOf(err))
		assert.True(t, IsStatus(err, ErrCodeNotFound))
	})

	t.Run("standard error", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(errors.New("plain")))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(nil))
		assert.False(t, IsStatus(nil, ErrCodeNotFound))
	})
}

func TestWithCode(t *testing.T) {
	base := FailedPrecond("cannot delete current version")
	err := base.WithCode("ErrVersionIsCurrent")

	assert.Equal(t, "ErrVersionIsCurrent", err.Code())
	assert.Equal(t, ErrCodeFailedPrecondition, err.Status())
	assert.Equal(t, base.Error(), err.Error())
	assert.Empty(t, base.Code())
}

func TestWithCause(t *testing.T) {
	t.Run("keeps cause in chain", func(t *testing.T) {
		cause := context.DeadlineExceeded
		err := Internal("create version").WithCode("ErrStorage").WithCause(cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, ErrCodeInternal, StatusOf(err))
		assert.Equal(t, "ErrStorage", err.Code())
		assert.Equal(t, "create version: context deadline exceeded", err.Error())
	})

	t.Run("sentinel stays comparable", func(t *testing.T) {
		sentinel := Aborted("sequence conflict").WithCode("ErrVersionSeqConflict")
		err := fmt.Errorf("insert: %w", sentinel.WithCause(errors.New("E11000")))
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, "insert: sequence conflict: E11000", err.Error())
		assert.Equal(t, ErrCodeAborted, StatusOf(err))
	})

	t.Run("nil cause", func(t *testing.T) {
		err := Internal("x")
		assert.Equal(t, err, err.WithCause(nil))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Aborted("conflict")))
	assert.True(t, IsRetryable(fmt.Errorf("wrap: %w", Unavailable("timeout"))))
	assert.False(t, IsRetryable(Internal("broken")))
	assert.False(t, IsRetryable(NotFound("missing")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestErrorInfoOf(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		err := FailedPrecond("cannot delete pinned version").WithCode("ErrVersionPinned")
		info := ErrorInfoOf(fmt.Errorf("delete: %w", err))

		assert.Equal(t, ErrCodeFailedPrecondition, info.Status)
		assert.Equal(t, "ErrVersionPinned", info.Code)
		assert.True(t, info.IsClient)
		assert.False(t, info.IsServer)
		assert.Equal(
			t,
			"delete: cannot delete pinned version (failed_precondition, ErrVersionPinned)",
			info.String(),
		)
	})

	t.Run("status without code", func(t *testing.T) {
		info := ErrorInfoOf(Unavailable("storage timeout"))
		assert.Equal(t, "storage timeout (unavailable)", info.String())
		assert.True(t, info.IsServer)
	})

	t.Run("plain error", func(t *testing.T) {
		info := ErrorInfoOf(errors.New("unknown flag: --x"))
		assert.Equal(t, "unknown flag: --x", info.String())
		assert.False(t, info.IsClient)
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, ErrorInfo{}, ErrorInfoOf(nil))
	})
}

func TestNew(t *testing.T) {
	err := New(ErrCodeAlreadyExists, "duplicated")
	assert.Equal(t, ErrCodeAlreadyExists, err.Status())
	assert.Equal(t, "duplicated", err.Error())
}
