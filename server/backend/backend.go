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

// Package backend provides the backend implementation of folio. This package
// is responsible for managing the database and other resources required to
// run the version history.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/semaphore"

	"github.com/yorkie-team/folio/server/backend/background"
	"github.com/yorkie-team/folio/server/backend/cache"
	"github.com/yorkie-team/folio/server/backend/database"
	memdb "github.com/yorkie-team/folio/server/backend/database/memory"
	"github.com/yorkie-team/folio/server/backend/database/mongo"
	"github.com/yorkie-team/folio/server/backend/database/postgres"
	"github.com/yorkie-team/folio/server/backend/housekeeping"
	"github.com/yorkie-team/folio/server/backend/sync"
	memsync "github.com/yorkie-team/folio/server/backend/sync/memory"
	"github.com/yorkie-team/folio/server/backend/sync/redis"
	"github.com/yorkie-team/folio/server/logging"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
)

// ErrMultipleDatabases is returned when more than one database is configured.
var ErrMultipleDatabases = errors.New("only one of MongoDB and PostgreSQL can be configured")

// Backend manages folio's backend such as Database and Coordinator. It also
// provides in-memory caches and the background services.
type Backend struct {
	Config *Config

	// Cache is the central cache manager for all caches.
	Cache *cache.Manager
	// Coordinator is used to lock/unlock documents.
	Coordinator sync.Coordinator
	// DiffSemaphore bounds the number of large diffs computed at once.
	DiffSemaphore *semaphore.Weighted

	// fanOutSem bounds the per-document work of batch tasks.
	fanOutSem *semaphore.Weighted

	// Background is used to manage background tasks.
	Background *background.Background
	// Housekeeping is used to manage background batch tasks.
	Housekeeping *housekeeping.Housekeeping

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
	// DB is the database instance.
	DB database.Database
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	postgresConf *postgres.Config,
	redisConf *redis.Config,
	housekeepingConf *housekeeping.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	// 01. Use the hostname of the current machine if none is given.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	if mongoConf != nil && postgresConf != nil {
		return nil, ErrMultipleDatabases
	}

	// 02. Create the cache manager and the background task manager.
	cacheManager, err := cache.New(cache.Options{
		DiffCacheSize:       conf.DiffCacheSize,
		CurrentDiffCacheTTL: conf.ParseCurrentDiffCacheTTL(),
		StatsInterval:       conf.ParseCacheStatsInterval(),
	})
	if err != nil {
		return nil, err
	}
	bg := background.New(metrics)

	// 03. Create the coordinator. If the Redis configuration is given, the
	// locks are shared with the other servers. Otherwise, they are local.
	var coordinator sync.Coordinator
	if redisConf != nil {
		coordinator, err = redis.Dial(redisConf)
		if err != nil {
			return nil, err
		}
	} else {
		coordinator = memsync.NewCoordinator()
	}

	// 04. Create the database instance. If the MongoDB or the PostgreSQL
	// configuration is given, connect to it. Otherwise, create a memory
	// database instance.
	var db database.Database
	dbInfo := "memory"
	switch {
	case mongoConf != nil:
		db, err = mongo.Dial(mongoConf)
		dbInfo = mongoConf.ConnectionURI
	case postgresConf != nil:
		db, err = postgres.Dial(postgresConf)
		dbInfo = "postgres"
	default:
		db, err = memdb.New()
	}
	if err != nil {
		return nil, errors.Join(err, coordinator.Close())
	}

	// 05. Create the housekeeping instance.
	housekeeper, err := housekeeping.New(housekeepingConf, coordinator)
	if err != nil {
		return nil, errors.Join(err, db.Close(), coordinator.Close())
	}

	logging.DefaultLogger().Infof("backend created: db: %s", dbInfo)

	return &Backend{
		Config: conf,

		Cache:         cacheManager,
		Coordinator:   coordinator,
		DiffSemaphore: semaphore.NewWeighted(conf.DiffConcurrency),
		fanOutSem:     newFanOutSemaphore(conf.PruneConcurrency),

		Background:   bg,
		Housekeeping: housekeeper,

		Metrics: metrics,
		DB:      db,
	}, nil
}

// Start starts the backend.
func (b *Backend) Start(ctx context.Context) error {
	if err := b.Housekeeping.Start(ctx); err != nil {
		return err
	}

	if b.Config.ParseCacheStatsInterval() > 0 {
		if err := b.Background.AttachGoroutine(b.Cache.Stats.StartPeriodicLogging, "cache-stats"); err != nil {
			return err
		}
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Housekeeping.Stop(); err != nil {
		errs = append(errs, err)
	}

	// cancels the cache stats logging as well.
	b.Background.Close()

	if err := b.Coordinator.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}
