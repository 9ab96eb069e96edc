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

package autosave

import (
	"fmt"
	"time"

	"github.com/yorkie-team/folio/internal/validation"
)

// DefaultDelay is the default quiet period after the last edit before the
// pending content is saved.
const DefaultDelay = 2 * time.Second

// Config is the configuration for autosave sessions.
type Config struct {
	// Delay is the quiet period after the last edit before saving.
	Delay string `yaml:"Delay"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if err := validation.ValidateValue(c.Delay, "required,duration"); err != nil {
		return fmt.Errorf("autosave: Delay %q: %w", c.Delay, err)
	}

	if delay, _ := time.ParseDuration(c.Delay); delay <= 0 {
		return fmt.Errorf("autosave: Delay %q must be positive", c.Delay)
	}

	return nil
}

// ParseDelay returns the delay, or DefaultDelay if it cannot be parsed.
func (c *Config) ParseDelay() time.Duration {
	delay, err := time.ParseDuration(c.Delay)
	if err != nil || delay <= 0 {
		return DefaultDelay
	}

	return delay
}
