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

package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/folio/server/backend"
)

func newValidBackendConf() backend.Config {
	return backend.Config{
		SnapshotInterval:            10,
		StorageTimeout:              "5s",
		SeqConflictMaxRetries:       3,
		SeqConflictBaseWaitInterval: "10ms",
		SeqConflictMaxWaitInterval:  "200ms",
		DiffCacheSize:               1000,
		CurrentDiffCacheTTL:         "10s",
		DiffConcurrency:             8,
		DiffOffloadThreshold:        64 * 1024,
	}
}

func TestConfig(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		validConf := newValidBackendConf()
		assert.NoError(t, validConf.Validate())

		conf1 := validConf
		conf1.SnapshotInterval = 0
		assert.ErrorIs(t, conf1.Validate(), backend.ErrInvalidSnapshotInterval)

		conf2 := validConf
		conf2.StorageTimeout = "5 seconds"
		assert.Error(t, conf2.Validate())

		conf3 := validConf
		conf3.SeqConflictMaxWaitInterval = "s"
		assert.Error(t, conf3.Validate())

		conf4 := validConf
		conf4.DiffCacheSize = 0
		assert.Error(t, conf4.Validate())

		conf5 := validConf
		conf5.DiffConcurrency = 0
		assert.Error(t, conf5.Validate())

		conf6 := validConf
		conf6.CacheStatsInterval = "minute"
		assert.Error(t, conf6.Validate())

		conf7 := validConf
		conf7.CurrentDiffCacheTTL = ""
		assert.Error(t, conf7.Validate())

		conf8 := validConf
		conf8.PruneConcurrency = -1
		assert.Error(t, conf8.Validate())
	})

	t.Run("parse test", func(t *testing.T) {
		validConf := newValidBackendConf()

		assert.Equal(t, "5s", validConf.ParseStorageTimeout().String())
		assert.Equal(t, "10ms", validConf.ParseSeqConflictBaseWaitInterval().String())
		assert.Equal(t, "200ms", validConf.ParseSeqConflictMaxWaitInterval().String())
		assert.Equal(t, "10s", validConf.ParseCurrentDiffCacheTTL().String())
		assert.Zero(t, validConf.ParseCacheStatsInterval())

		validConf.CacheStatsInterval = "1m"
		assert.Equal(t, "1m0s", validConf.ParseCacheStatsInterval().String())
	})
}
