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

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/folio/server/autosave"
	"github.com/yorkie-team/folio/server/backend"
	"github.com/yorkie-team/folio/server/backend/database/mongo"
	"github.com/yorkie-team/folio/server/backend/database/postgres"
	"github.com/yorkie-team/folio/server/backend/housekeeping"
	"github.com/yorkie-team/folio/server/backend/sync/redis"
	"github.com/yorkie-team/folio/server/profiling"
)

// Below are the values of the default values of folio config.
const (
	DefaultProfilingPort = 8181

	DefaultHousekeepingInterval          = 5 * time.Minute
	DefaultHousekeepingDocumentFetchSize = 100
	DefaultHousekeepingRetentionKeepAuto = 0

	DefaultMongoConnectionURI                = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout            = 5 * time.Second
	DefaultMongoPingTimeout                  = 5 * time.Second
	DefaultMongoFolioDatabase                = "folio"
	DefaultMongoMonitoringSlowQueryThreshold = 100 * time.Millisecond

	DefaultPostgresConnectionTimeout = 5 * time.Second

	DefaultSnapshotInterval            = 10
	DefaultStorageTimeout              = 5 * time.Second
	DefaultSeqConflictMaxRetries       = 3
	DefaultSeqConflictBaseWaitInterval = 10 * time.Millisecond
	DefaultSeqConflictMaxWaitInterval  = 200 * time.Millisecond
	DefaultDiffCacheSize               = 1000
	DefaultCurrentDiffCacheTTL         = 10 * time.Second
	DefaultDiffConcurrency             = 8
	DefaultDiffOffloadThreshold        = 64 * 1024
	DefaultPruneConcurrency            = 4

	DefaultHostname = ""
)

// Config is the configuration for creating a folio instance.
type Config struct {
	Profiling    *profiling.Config    `yaml:"Profiling"`
	Housekeeping *housekeeping.Config `yaml:"Housekeeping"`
	Backend      *backend.Config      `yaml:"Backend"`
	Autosave     *autosave.Config     `yaml:"Autosave"`
	Mongo        *mongo.Config        `yaml:"Mongo"`
	Postgres     *postgres.Config     `yaml:"Postgres"`
	Redis        *redis.Config        `yaml:"Redis"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if c.Profiling != nil {
		if err := c.Profiling.Validate(); err != nil {
			return err
		}
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if err := c.Autosave.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil && c.Postgres != nil {
		return backend.ErrMultipleDatabases
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	if c.Postgres != nil {
		if err := c.Postgres.Validate(); err != nil {
			return err
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	defaults := newConfig(DefaultProfilingPort)

	if c.Profiling != nil && c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Housekeeping == nil {
		c.Housekeeping = defaults.Housekeeping
	}
	if c.Housekeeping.Interval == "" {
		c.Housekeeping.Interval = DefaultHousekeepingInterval.String()
	}
	if c.Housekeeping.DocumentFetchSize == 0 {
		c.Housekeeping.DocumentFetchSize = DefaultHousekeepingDocumentFetchSize
	}

	if c.Backend == nil {
		c.Backend = defaults.Backend
	}
	if c.Backend.SnapshotInterval == 0 {
		c.Backend.SnapshotInterval = DefaultSnapshotInterval
	}
	if c.Backend.StorageTimeout == "" {
		c.Backend.StorageTimeout = DefaultStorageTimeout.String()
	}
	if c.Backend.SeqConflictMaxRetries == 0 {
		c.Backend.SeqConflictMaxRetries = DefaultSeqConflictMaxRetries
	}
	if c.Backend.SeqConflictBaseWaitInterval == "" {
		c.Backend.SeqConflictBaseWaitInterval = DefaultSeqConflictBaseWaitInterval.String()
	}
	if c.Backend.SeqConflictMaxWaitInterval == "" {
		c.Backend.SeqConflictMaxWaitInterval = DefaultSeqConflictMaxWaitInterval.String()
	}
	if c.Backend.DiffCacheSize == 0 {
		c.Backend.DiffCacheSize = DefaultDiffCacheSize
	}
	if c.Backend.CurrentDiffCacheTTL == "" {
		c.Backend.CurrentDiffCacheTTL = DefaultCurrentDiffCacheTTL.String()
	}
	if c.Backend.DiffConcurrency == 0 {
		c.Backend.DiffConcurrency = DefaultDiffConcurrency
	}
	if c.Backend.DiffOffloadThreshold == 0 {
		c.Backend.DiffOffloadThreshold = DefaultDiffOffloadThreshold
	}
	if c.Backend.PruneConcurrency == 0 {
		c.Backend.PruneConcurrency = DefaultPruneConcurrency
	}

	if c.Autosave == nil {
		c.Autosave = defaults.Autosave
	}
	if c.Autosave.Delay == "" {
		c.Autosave.Delay = autosave.DefaultDelay.String()
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}
		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout.String()
		}
		if c.Mongo.FolioDatabase == "" {
			c.Mongo.FolioDatabase = DefaultMongoFolioDatabase
		}
		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout.String()
		}
		if c.Mongo.MonitoringEnabled && c.Mongo.MonitoringSlowQueryThreshold == "" {
			c.Mongo.MonitoringSlowQueryThreshold = DefaultMongoMonitoringSlowQueryThreshold.String()
		}
	}

	if c.Postgres != nil && c.Postgres.ConnectionTimeout == "" {
		c.Postgres.ConnectionTimeout = DefaultPostgresConnectionTimeout.String()
	}

	if c.Redis != nil {
		if c.Redis.DialTimeout == "" {
			c.Redis.DialTimeout = redis.DefaultDialTimeout.String()
		}
		if c.Redis.KeyPrefix == "" {
			c.Redis.KeyPrefix = redis.DefaultKeyPrefix
		}
		if c.Redis.LockLeaseTime == "" {
			c.Redis.LockLeaseTime = redis.DefaultLockLeaseTime.String()
		}
		if c.Redis.LockRetryInterval == "" {
			c.Redis.LockRetryInterval = redis.DefaultLockRetryInterval.String()
		}
	}
}

func newConfig(profilingPort int) *Config {
	return &Config{
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Housekeeping: &housekeeping.Config{
			Interval:          DefaultHousekeepingInterval.String(),
			DocumentFetchSize: DefaultHousekeepingDocumentFetchSize,
			RetentionKeepAuto: DefaultHousekeepingRetentionKeepAuto,
		},
		Backend: &backend.Config{
			SnapshotInterval:            DefaultSnapshotInterval,
			StorageTimeout:              DefaultStorageTimeout.String(),
			SeqConflictMaxRetries:       DefaultSeqConflictMaxRetries,
			SeqConflictBaseWaitInterval: DefaultSeqConflictBaseWaitInterval.String(),
			SeqConflictMaxWaitInterval:  DefaultSeqConflictMaxWaitInterval.String(),
			DiffCacheSize:               DefaultDiffCacheSize,
			CurrentDiffCacheTTL:         DefaultCurrentDiffCacheTTL.String(),
			DiffConcurrency:             DefaultDiffConcurrency,
			DiffOffloadThreshold:        DefaultDiffOffloadThreshold,
			PruneConcurrency:            DefaultPruneConcurrency,
			Hostname:                    DefaultHostname,
		},
		Autosave: &autosave.Config{
			Delay: autosave.DefaultDelay.String(),
		},
	}
}
