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


package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatements(t *testing.T) {
	stmts, err := schemaStatements(NewTableNames("t_"))
	require.NoError(t, err)

	var indexes []string
	for _, stmt := range stmts {
		assert.NotContains(t, stmt, "{{")
		if strings.HasPrefix(stmt, "CREATE INDEX") {
			indexes = append(indexes, strings.Fields(stmt)[5])
		}
	}
	assert.Equal(t, []string{
		"t_versions_history_idx",
		"t_versions_created_idx",
		"t_versions_pinned_idx",
	}, indexes)

	joined := strings.Join(stmts, "\n")
	assert.Contains(t, joined, "UNIQUE (doc_id, seq)")
	assert.Contains(t, joined, "ON t_versions (doc_id, created_at DESC)")
	assert.Contains(t, joined, "ON t_versions (is_pinned)")
}
