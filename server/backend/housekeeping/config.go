/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
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

package housekeeping

import (
	"fmt"
	"time"

	"github.com/yorkie-team/folio/internal/validation"
)

// Config is the configuration for the housekeeping service.
type Config struct {
	// Interval is the time between two runs of a task.
	Interval string `yaml:"Interval" validate:"required,duration"`

	// DocumentFetchSize is the maximum number of documents visited in one
	// run of the retention task.
	DocumentFetchSize int `yaml:"DocumentFetchSize" validate:"min=1"`

	// RetentionKeepAuto is the number of newest auto versions kept per
	// document. Older auto versions that are not pinned, not snapshots and
	// not current are removed. Zero disables the retention task.
	RetentionKeepAuto int `yaml:"RetentionKeepAuto" validate:"min=0"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("housekeeping: %w", err)
	}

	interval, err := c.ParseInterval()
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("housekeeping: Interval must be positive, got %s", c.Interval)
	}

	return nil
}

// RetentionEnabled reports whether the retention task should be registered.
func (c *Config) RetentionEnabled() bool {
	return c.RetentionKeepAuto > 0
}

// ParseInterval parses the interval.
func (c *Config) ParseInterval() (time.Duration, error) {
	interval, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("parse interval %s: %w", c.Interval, err)
	}

	return interval, nil
}
