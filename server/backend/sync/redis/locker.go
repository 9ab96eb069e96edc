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
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"github.com/yorkie-team/folio/server/backend/sync"
)

// unlockScript deletes the key only if it still holds the caller's token, so
// a locker whose lease expired cannot release the lock of the next holder.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type internalLocker struct {
	client        *redis.Client
	key           string
	lease         time.Duration
	retryInterval time.Duration

	token string
}

// Lock locks the mutex with a cancelable context.
func (il *internalLocker) Lock(ctx context.Context) error {
	for {
		err := il.TryLock(ctx)
		if err == nil {
			return nil
		}
		if err != sync.ErrAlreadyLocked {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("lock %s: %w", il.key, ctx.Err())
		case <-time.After(il.retryInterval):
		}
	}
}

// TryLock locks the mutex if not already locked by another session.
func (il *internalLocker) TryLock(ctx context.Context) error {
	token := xid.New().String()
	ok, err := il.client.SetNX(ctx, il.key, token, il.lease).Result()
	if err != nil {
		return fmt.Errorf("try lock %s: %w", il.key, err)
	}
	if !ok {
		return sync.ErrAlreadyLocked
	}

	il.token = token
	return nil
}

// Unlock unlocks the mutex.
func (il *internalLocker) Unlock(ctx context.Context) error {
	if il.token == "" {
		return fmt.Errorf("unlock %s: %w", il.key, sync.ErrNotLocked)
	}

	deleted, err := unlockScript.Run(ctx, il.client, []string{il.key}, il.token).Int()
	if err != nil {
		return fmt.Errorf("unlock %s: %w", il.key, err)
	}
	il.token = ""

	if deleted == 0 {
		return fmt.Errorf("unlock %s: lease expired: %w", il.key, sync.ErrNotLocked)
	}

	return nil
}
