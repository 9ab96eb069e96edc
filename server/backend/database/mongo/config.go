/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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
	"fmt"
	"time"

	"github.com/yorkie-team/folio/internal/validation"
)

// Config is the configuration for creating a Client instance.
type Config struct {
	ConnectionURI     string `yaml:"ConnectionURI" validate:"required"`
	FolioDatabase     string `yaml:"FolioDatabase" validate:"required"`
	ConnectionTimeout string `yaml:"ConnectionTimeout" validate:"required,duration"`
	PingTimeout       string `yaml:"PingTimeout" validate:"required,duration"`

	// MonitoringEnabled logs every command at debug level, and the commands
	// slower than MonitoringSlowQueryThreshold as warnings.
	MonitoringEnabled            bool   `yaml:"MonitoringEnabled"`
	MonitoringSlowQueryThreshold string `yaml:"MonitoringSlowQueryThreshold" validate:"omitempty,duration"`
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("mongo: %w", err)
	}

	if c.MonitoringEnabled && c.MonitoringSlowQueryThreshold == "" {
		return fmt.Errorf("mongo: MonitoringSlowQueryThreshold is required when monitoring is enabled")
	}

	return nil
}

// ParseConnectionTimeout returns the connection timeout. It is meant for a
// validated Config and returns zero for a malformed value.
func (c *Config) ParseConnectionTimeout() time.Duration {
	return parseDuration(c.ConnectionTimeout)
}

// ParsePingTimeout returns the ping timeout of a validated Config.
func (c *Config) ParsePingTimeout() time.Duration {
	return parseDuration(c.PingTimeout)
}

// ParseSlowQueryThreshold returns the slow query threshold. Zero means no
// command is reported as slow.
func (c *Config) ParseSlowQueryThreshold() time.Duration {
	if !c.MonitoringEnabled {
		return 0
	}
	return parseDuration(c.MonitoringSlowQueryThreshold)
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
