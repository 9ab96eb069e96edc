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

package redis

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultDialTimeout is the default dial timeout of redis connection.
	DefaultDialTimeout = 5 * time.Second

	// DefaultLockLeaseTime is the default lease time of lock.
	DefaultLockLeaseTime = 30 * time.Second

	// DefaultLockRetryInterval is the default interval between attempts to
	// take a held lock.
	DefaultLockRetryInterval = 20 * time.Millisecond

	// DefaultKeyPrefix is the default prefix of the lock keys.
	DefaultKeyPrefix = "folio:lock:"
)

var (
	// ErrEmptyURL occurs when the URL in the config is empty.
	ErrEmptyURL = errors.New("redis URL must not be empty")
)

// Config is the configuration for creating a Client instance.
type Config struct {
	// URL is the redis URL, e.g. redis://:password@localhost:6379/0.
	URL         string `yaml:"URL"`
	DialTimeout string `yaml:"DialTimeout"`
	KeyPrefix   string `yaml:"KeyPrefix"`

	LockLeaseTime     string `yaml:"LockLeaseTime"`
	LockRetryInterval string `yaml:"LockRetryInterval"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrEmptyURL
	}

	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--redis-dial-timeout" flag: %w`,
			c.DialTimeout,
			err,
		)
	}

	lease, err := time.ParseDuration(c.LockLeaseTime)
	if err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--redis-lock-lease-time" flag: %w`,
			c.LockLeaseTime,
			err,
		)
	}
	if lease < time.Millisecond {
		return fmt.Errorf(`lock lease time "%s" must be at least 1ms`, c.LockLeaseTime)
	}

	if _, err := time.ParseDuration(c.LockRetryInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--redis-lock-retry-interval" flag: %w`,
			c.LockRetryInterval,
			err,
		)
	}

	return nil
}

// ParseDialTimeout returns the dial timeout.
func (c *Config) ParseDialTimeout() time.Duration {
	result, err := time.ParseDuration(c.DialTimeout)
	if err != nil {
		panic(err)
	}

	return result
}

// ParseLockLeaseTime returns the lease time of lock.
func (c *Config) ParseLockLeaseTime() time.Duration {
	result, err := time.ParseDuration(c.LockLeaseTime)
	if err != nil {
		panic(err)
	}

	return result
}

// ParseLockRetryInterval returns the interval between lock attempts.
func (c *Config) ParseLockRetryInterval() time.Duration {
	result, err := time.ParseDuration(c.LockRetryInterval)
	if err != nil {
		panic(err)
	}

	return result
}

// Prefix returns the prefix of the lock keys.
func (c *Config) Prefix() string {
	if c.KeyPrefix == "" {
		return DefaultKeyPrefix
	}
	return c.KeyPrefix
}
