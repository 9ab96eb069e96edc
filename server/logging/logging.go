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

// Package logging provides the loggers used across the folio server. Every
// logger shares one level, so SetLogLevel also affects loggers that already
// exist.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sugared zap logger used by folio.
type Logger = *zap.SugaredLogger

// Field is a structured key-value pair attached to a logger.
type Field = zap.Field

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	defaultLogger Logger
	defaultOnce   sync.Once
)

// SetLogLevel sets the level shared by every folio logger. It accepts one of
// "debug", "info", "warn", "error", "panic" or "fatal".
func SetLogLevel(name string) error {
	var l zapcore.Level
	switch strings.ToLower(name) {
	case "debug", "info", "warn", "error", "panic", "fatal":
		if err := l.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
			return fmt.Errorf("parse log level %q: %w", name, err)
		}
	default:
		return fmt.Errorf("invalid log level: %s", name)
	}

	level.SetLevel(l)
	return nil
}

// New creates a logger named after the component that owns it, such as
// "hskp" or "autosave".
func New(name string, fields ...Field) Logger {
	logger := newLogger(name)
	if len(fields) == 0 {
		return logger
	}

	args := make([]interface{}, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}

// NewField creates a string field.
func NewField(key string, value string) Field {
	return zap.String(key, value)
}

// DefaultLogger returns the logger used when a context carries none.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		defaultLogger = newLogger("default")
	})
	return defaultLogger
}

// Enabled reports whether messages at the given level are written.
func Enabled(l zapcore.Level) bool {
	return level.Enabled(l)
}

func newLogger(name string) Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig()),
		zapcore.Lock(os.Stdout),
		level,
	)

	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)).Named(name).Sugar()
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
