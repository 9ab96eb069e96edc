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
)

type loggerKey struct{}

// With returns a copy of ctx that carries logger.
func With(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithFields returns a copy of ctx whose logger has the given fields added.
func WithFields(ctx context.Context, fields ...Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}

	args := make([]interface{}, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return With(ctx, From(ctx).With(args...))
}

// From returns the logger carried by ctx, or the default logger.
func From(ctx context.Context) Logger {
	if ctx == nil {
		return DefaultLogger()
	}

	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}
	return DefaultLogger()
}
