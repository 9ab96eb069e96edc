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

package profiling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/folio/server/profiling"
)

func TestConfig(t *testing.T) {
	t.Run("port range test", func(t *testing.T) {
		for _, port := range []int{-1, 0, 65536} {
			conf := profiling.Config{Port: port}
			assert.ErrorIs(t, conf.Validate(), profiling.ErrInvalidProfilingPort, "port %d", port)
		}

		for _, port := range []int{1, 8181, 65535} {
			conf := profiling.Config{Port: port}
			assert.NoError(t, conf.Validate(), "port %d", port)
		}
	})

	t.Run("addr test", func(t *testing.T) {
		assert.Equal(t, ":8181", (&profiling.Config{Port: 8181}).Addr())
		assert.Equal(t, "localhost:8181", (&profiling.Config{Host: "localhost", Port: 8181}).Addr())
		assert.Equal(t, "[::1]:8181", (&profiling.Config{Host: "::1", Port: 8181}).Addr())
	})
}
