/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { assert.NoError(t, SetLogLevel("info")) })

	logger := New("test")

	assert.NoError(t, SetLogLevel("DEBUG"))
	assert.True(t, Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	assert.NoError(t, SetLogLevel("error"))
	assert.False(t, Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Desugar().Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, SetLogLevel("verbose"))
	assert.Error(t, SetLogLevel("dpanic"))
	assert.False(t, Enabled(zapcore.WarnLevel))
}

func TestContextLogger(t *testing.T) {
	t.Run("default when absent", func(t *testing.T) {
		assert.Same(t, DefaultLogger(), From(context.Background()))
		//nolint:staticcheck
		assert.Same(t, DefaultLogger(), From(nil))
	})

	t.Run("carried logger", func(t *testing.T) {
		logger := New("ctx")
		ctx := With(context.Background(), logger)
		assert.Same(t, logger, From(ctx))
	})

	t.Run("with fields", func(t *testing.T) {
		logger := New("ctx")
		ctx := With(context.Background(), logger)

		assert.Equal(t, ctx, WithFields(ctx))

		withDoc := WithFields(ctx, NewField("doc", "a"))
		assert.NotSame(t, logger, From(withDoc))
		assert.Same(t, logger, From(ctx))
	})
}
