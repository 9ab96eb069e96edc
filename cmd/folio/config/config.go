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

// Package config provides the store settings shared by the folio commands.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yorkie-team/folio/server"
	"github.com/yorkie-team/folio/server/backend/database/mongo"
	"github.com/yorkie-team/folio/server/backend/database/postgres"
	"github.com/yorkie-team/folio/server/backend/sync/redis"
	"github.com/yorkie-team/folio/server/logging"
)

const envPrefix = "FOLIO"

// Flag names of the store settings. They double as viper keys, so
// FOLIO_MONGO_CONNECTION_URI overrides --mongo-connection-uri.
const (
	FlagConfig             = "config"
	FlagLogLevel           = "log-level"
	FlagMongoConnectionURI = "mongo-connection-uri"
	FlagMongoDatabase      = "mongo-database"
	FlagPostgresDSN        = "postgres-dsn"
	FlagRedisURL           = "redis-url"
)

// AddPersistentFlags adds the store flags to the given root command.
func AddPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP(FlagConfig, "c", "", "Config path")
	flags.StringP(FlagLogLevel, "l", "info", "Log level: debug, info, warn, error, panic, fatal")
	flags.String(FlagMongoConnectionURI, "", "MongoDB's connection URI")
	flags.String(FlagMongoDatabase, server.DefaultMongoFolioDatabase, "Folio's database name in MongoDB")
	flags.String(FlagPostgresDSN, "", "PostgreSQL's connection string")
	flags.String(FlagRedisURL, "", "Redis URL used to lock documents across instances")
}

// Preload binds the flags of the command to viper so that the environment
// can override them.
func Preload(cmd *cobra.Command, args []string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if bindErr != nil {
			return
		}
		if err := viper.BindPFlag(flag.Name, flag); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	return logging.SetLogLevel(viper.GetString(FlagLogLevel))
}

// Load returns the server config from the config file, or from the flags
// and the environment when no file is given.
func Load() (*server.Config, error) {
	// If config file is given, command-line arguments will be overwritten.
	if path := viper.GetString(FlagConfig); path != "" {
		return server.NewConfigFromFile(path)
	}

	conf := server.NewConfig()
	if uri := viper.GetString(FlagMongoConnectionURI); uri != "" {
		database := viper.GetString(FlagMongoDatabase)
		if database == "" {
			database = server.DefaultMongoFolioDatabase
		}
		conf.Mongo = &mongo.Config{
			ConnectionURI:     uri,
			ConnectionTimeout: server.DefaultMongoConnectionTimeout.String(),
			FolioDatabase:     database,
			PingTimeout:       server.DefaultMongoPingTimeout.String(),
		}
	}
	if dsn := viper.GetString(FlagPostgresDSN); dsn != "" {
		conf.Postgres = &postgres.Config{
			DSN:               dsn,
			ConnectionTimeout: server.DefaultPostgresConnectionTimeout.String(),
		}
	}
	if url := viper.GetString(FlagRedisURL); url != "" {
		conf.Redis = &redis.Config{
			URL:               url,
			DialTimeout:       redis.DefaultDialTimeout.String(),
			KeyPrefix:         redis.DefaultKeyPrefix,
			LockLeaseTime:     redis.DefaultLockLeaseTime.String(),
			LockRetryInterval: redis.DefaultLockRetryInterval.String(),
		}
	}

	return conf, nil
}

// Open opens a server for a single command. Housekeeping and the profiling
// server are not started.
func Open() (*server.Folio, error) {
	conf, err := Load()
	if err != nil {
		return nil, err
	}
	conf.Profiling = nil

	if conf.Mongo == nil && conf.Postgres == nil {
		logging.DefaultLogger().Warn("no store is configured, changes are kept in memory only")
	}

	return server.New(conf)
}

// Run opens a server, runs fn with it and shuts the server down.
func Run(fn func(ctx context.Context, f *server.Folio) error) (err error) {
	f, err := Open()
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := f.Shutdown(true); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	return fn(context.Background(), f)
}

// ReadContent reads the content of the given file. "-" reads the standard
// input.
func ReadContent(path string) (string, error) {
	if path == "" {
		return "", errors.New("content file is required")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}

	return string(data), nil
}
