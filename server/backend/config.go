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

package backend

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrInvalidSnapshotInterval is returned when the snapshot interval is not
// positive.
var ErrInvalidSnapshotInterval = errors.New("snapshot interval must be positive")

// Config is the configuration for creating a Backend instance.
type Config struct {
	// SnapshotInterval is the interval of sequences to mark a version as a
	// snapshot. Default is 10.
	SnapshotInterval int64 `yaml:"SnapshotInterval"`

	// StorageTimeout bounds every storage call and lock wait of an operation.
	StorageTimeout string `yaml:"StorageTimeout"`

	// SeqConflictMaxRetries is the max count that retries a version creation
	// which lost the sequence race.
	SeqConflictMaxRetries uint64 `yaml:"SeqConflictMaxRetries"`

	// SeqConflictBaseWaitInterval is the interval before the first retry.
	SeqConflictBaseWaitInterval string `yaml:"SeqConflictBaseWaitInterval"`

	// SeqConflictMaxWaitInterval is the max interval that waits before retrying.
	SeqConflictMaxWaitInterval string `yaml:"SeqConflictMaxWaitInterval"`

	// DiffCacheSize is the cache size of the diffs between stored versions.
	DiffCacheSize int `yaml:"DiffCacheSize"`

	// CurrentDiffCacheTTL is the TTL of the diffs against the live content.
	CurrentDiffCacheTTL string `yaml:"CurrentDiffCacheTTL"`

	// CacheStatsInterval is the interval of cache statistics logging. Empty
	// disables the logging.
	CacheStatsInterval string `yaml:"CacheStatsInterval"`

	// DiffConcurrency is the number of large diffs computed at once.
	DiffConcurrency int64 `yaml:"DiffConcurrency"`

	// DiffOffloadThreshold is the size in bytes above which a diff waits for
	// a slot of DiffConcurrency.
	DiffOffloadThreshold int `yaml:"DiffOffloadThreshold"`

	// PruneConcurrency is the number of documents pruned at once by the
	// retention task. 0 prunes one document at a time.
	PruneConcurrency int64 `yaml:"PruneConcurrency"`

	// Hostname is folio server hostname. hostname is used by metrics.
	Hostname string `yaml:"Hostname"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf(
			`invalid argument "%d" for "--snapshot-interval" flag: %w`,
			c.SnapshotInterval,
			ErrInvalidSnapshotInterval,
		)
	}

	if _, err := time.ParseDuration(c.StorageTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--storage-timeout" flag: %w`,
			c.StorageTimeout,
			err,
		)
	}

	if _, err := time.ParseDuration(c.SeqConflictBaseWaitInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--seq-conflict-base-wait-interval" flag: %w`,
			c.SeqConflictBaseWaitInterval,
			err,
		)
	}

	if _, err := time.ParseDuration(c.SeqConflictMaxWaitInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--seq-conflict-max-wait-interval" flag: %w`,
			c.SeqConflictMaxWaitInterval,
			err,
		)
	}

	if c.DiffCacheSize <= 0 {
		return fmt.Errorf(`invalid argument "%d" for "--diff-cache-size" flag`, c.DiffCacheSize)
	}

	if _, err := time.ParseDuration(c.CurrentDiffCacheTTL); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--current-diff-cache-ttl" flag: %w`,
			c.CurrentDiffCacheTTL,
			err,
		)
	}

	if c.CacheStatsInterval != "" {
		if _, err := time.ParseDuration(c.CacheStatsInterval); err != nil {
			return fmt.Errorf(
				`invalid argument "%s" for "--cache-stats-interval" flag: %w`,
				c.CacheStatsInterval,
				err,
			)
		}
	}

	if c.DiffConcurrency <= 0 {
		return fmt.Errorf(`invalid argument "%d" for "--diff-concurrency" flag`, c.DiffConcurrency)
	}

	if c.DiffOffloadThreshold < 0 {
		return fmt.Errorf(`invalid argument "%d" for "--diff-offload-threshold" flag`, c.DiffOffloadThreshold)
	}

	if c.PruneConcurrency < 0 {
		return fmt.Errorf(`invalid argument "%d" for "--prune-concurrency" flag`, c.PruneConcurrency)
	}

	return nil
}

// ParseStorageTimeout returns the timeout of storage calls.
func (c *Config) ParseStorageTimeout() time.Duration {
	return mustParseDuration("storage timeout", c.StorageTimeout)
}

// ParseSeqConflictBaseWaitInterval returns the wait before the first retry.
func (c *Config) ParseSeqConflictBaseWaitInterval() time.Duration {
	return mustParseDuration("seq conflict base wait interval", c.SeqConflictBaseWaitInterval)
}

// ParseSeqConflictMaxWaitInterval returns max wait interval.
func (c *Config) ParseSeqConflictMaxWaitInterval() time.Duration {
	return mustParseDuration("seq conflict max wait interval", c.SeqConflictMaxWaitInterval)
}

// ParseCurrentDiffCacheTTL returns TTL for diffs against the live content.
func (c *Config) ParseCurrentDiffCacheTTL() time.Duration {
	return mustParseDuration("current diff cache ttl", c.CurrentDiffCacheTTL)
}

// ParseCacheStatsInterval returns the interval of cache statistics logging,
// or 0 if the logging is disabled.
func (c *Config) ParseCacheStatsInterval() time.Duration {
	if c.CacheStatsInterval == "" {
		return 0
	}
	return mustParseDuration("cache stats interval", c.CacheStatsInterval)
}

func mustParseDuration(name, value string) time.Duration {
	result, err := time.ParseDuration(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", name, err)
		os.Exit(1)
	}

	return result
}
