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

// Package redis provides a Coordinator whose locks live in Redis, so that
// servers sharing a database also share the per-document locks.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yorkie-team/folio/server/backend/sync"
	"github.com/yorkie-team/folio/server/logging"
)

// Client is a client that connects to Redis.
type Client struct {
	config *Config
	client *redis.Client
}

// Dial creates a new instance of Client and dials the given Redis.
func Dial(conf *Config) (*Client, error) {
	opts, err := redis.ParseURL(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = conf.ParseDialTimeout()

	cli := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseDialTimeout())
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logging.DefaultLogger().Infof("Redis connected, Addr: %s", opts.Addr)

	return &Client{
		config: conf,
		client: cli,
	}, nil
}

// NewLocker creates locker of the given key.
func (c *Client) NewLocker(
	_ context.Context,
	key sync.Key,
) (sync.Locker, error) {
	return &internalLocker{
		client:        c.client,
		key:           c.config.Prefix() + key.String(),
		lease:         c.config.ParseLockLeaseTime(),
		retryInterval: c.config.ParseLockRetryInterval(),
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}

	return nil
}
