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

// Package postgres implements the database interface using PostgreSQL.
package postgres

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	gotime "time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/logging"
)

const (
	// uniqueViolation is the SQLSTATE of a unique constraint violation.
	uniqueViolation = "23505"

	versionColumns = `id, doc_id, seq, content, plain_text, word_count, is_snapshot,
		source, label, is_pinned, author_id, created_at`
)

//go:embed schema.sql
var schemaSQL string

// TableNames holds the prefixed table names.
type TableNames struct {
	Documents string
	Versions  string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents: fmt.Sprintf("%sdocuments", prefix),
		Versions:  fmt.Sprintf("%sversions", prefix),
	}
}

// Client is a client that connects to PostgreSQL and reads or saves folio
// data.
type Client struct {
	config *Config
	pool   *pgxpool.Pool
	tables *TableNames
}

// Dial creates an instance of Client, connects to the given PostgreSQL and
// creates the tables if they do not exist.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if conf.MaxConns > 0 {
		poolConfig.MaxConns = conf.MaxConns
	}
	if conf.MinConns > 0 {
		poolConfig.MinConns = conf.MinConns
	}

	// PgBouncer in transaction pooling mode does not support prepared
	// statements.
	if poolConfig.ConnConfig.Port == 6543 &&
		poolConfig.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	tables := NewTableNames(conf.TablePrefix)
	if err := migrate(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}

	logging.DefaultLogger().Infof(
		"PostgreSQL connected, host: %s, DB: %s",
		poolConfig.ConnConfig.Host,
		poolConfig.ConnConfig.Database,
	)

	return &Client{
		config: conf,
		pool:   pool,
		tables: tables,
	}, nil
}

// schemaStatements renders the schema for the given tables and splits it
// into statements.
func schemaStatements(tables *TableNames) ([]string, error) {
	tmpl, err := template.New("schema").Parse(schemaSQL)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, tables); err != nil {
		return nil, fmt.Errorf("render schema: %w", err)
	}

	var stmts []string
	for _, stmt := range strings.Split(buf.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts, err := schemaStatements(tables)
	if err != nil {
		return err
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	return nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// CreateDocInfo creates a new document with the given content.
func (c *Client) CreateDocInfo(
	ctx context.Context,
	content string,
) (*database.DocInfo, error) {
	now := timeNow()
	info := &database.DocInfo{
		ID:        types.NewID(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, c.tables.Documents)
	if _, err := c.conn(ctx).Exec(ctx, query, info.ID.String(), info.Content, info.CreatedAt, info.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return info, nil
}

// FindDocInfoByID returns the document of the given ID.
func (c *Client) FindDocInfoByID(
	ctx context.Context,
	docID types.ID,
) (*database.DocInfo, error) {
	query := fmt.Sprintf(`
		SELECT id, content, current_version_id, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, c.tables.Documents)

	info, err := scanDocInfo(c.conn(ctx).QueryRow(ctx, query, docID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", docID, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document %s: %w", docID, err)
	}

	return info, nil
}

// FindNextNDocInfos returns at most n documents after lastDocID in ID order.
func (c *Client) FindNextNDocInfos(
	ctx context.Context,
	lastDocID types.ID,
	n int,
) ([]*database.DocInfo, error) {
	query := fmt.Sprintf(`
		SELECT id, content, current_version_id, created_at, updated_at
		FROM %s
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, c.tables.Documents)

	rows, err := c.conn(ctx).Query(ctx, query, lastDocID.String(), n)
	if err != nil {
		return nil, fmt.Errorf("find next %d documents after %s: %w", n, lastDocID, err)
	}
	defer rows.Close()

	var infos []*database.DocInfo
	for rows.Next() {
		info, err := scanDocInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	return infos, nil
}

// UpdateDocInfoContent overwrites the live content of the document.
func (c *Client) UpdateDocInfoContent(
	ctx context.Context,
	docID types.ID,
	content string,
) error {
	query := fmt.Sprintf(`
		UPDATE %s SET content = $2, updated_at = $3 WHERE id = $1
	`, c.tables.Documents)
	return c.updateDocInfo(ctx, docID, query, content)
}

// UpdateDocInfoCurrentVersion points the document at the given version.
func (c *Client) UpdateDocInfoCurrentVersion(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
) error {
	var current *string
	if versionID != "" {
		id := versionID.String()
		current = &id
	}

	query := fmt.Sprintf(`
		UPDATE %s SET current_version_id = $2, updated_at = $3 WHERE id = $1
	`, c.tables.Documents)
	return c.updateDocInfo(ctx, docID, query, current)
}

func (c *Client) updateDocInfo(ctx context.Context, docID types.ID, query string, value any) error {
	tag, err := c.conn(ctx).Exec(ctx, query, docID.String(), value, timeNow())
	if err != nil {
		return fmt.Errorf("update document %s: %w", docID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", docID, database.ErrDocumentNotFound)
	}

	return nil
}

// FindLatestVersionSeq returns the largest sequence of the document's versions.
func (c *Client) FindLatestVersionSeq(
	ctx context.Context,
	docID types.ID,
) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(seq), 0) FROM %s WHERE doc_id = $1
	`, c.tables.Versions)

	var seq int64
	if err := c.conn(ctx).QueryRow(ctx, query, docID.String()).Scan(&seq); err != nil {
		return 0, fmt.Errorf("find latest seq of %s: %w", docID, err)
	}

	return seq, nil
}

// CreateVersionInfo inserts the given version. A duplicate (doc_id, seq) is
// reported as database.ErrVersionSeqConflict.
func (c *Client) CreateVersionInfo(
	ctx context.Context,
	info *database.VersionInfo,
) (*database.VersionInfo, error) {
	created := info.DeepCopy()
	created.ID = types.NewID()
	created.CreatedAt = timeNow()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.tables.Versions, versionColumns)

	if err := c.inSavepoint(ctx, func(q querier) error {
		_, err := q.Exec(ctx, query,
			created.ID.String(),
			created.DocID.String(),
			created.Seq,
			created.Content,
			created.PlainText,
			created.WordCount,
			created.IsSnapshot,
			created.Source.String(),
			created.Label,
			created.IsPinned,
			created.AuthorID,
			created.CreatedAt,
		)
		return err
	}); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf(
				"create version %s/%d: %w",
				info.DocID,
				info.Seq,
				database.ErrVersionSeqConflict.WithCause(err),
			)
		}
		return nil, fmt.Errorf("create version: %w", err)
	}

	return created, nil
}

// FindVersionInfoByID returns the version of the given document.
func (c *Client) FindVersionInfoByID(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
) (*database.VersionInfo, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1 AND doc_id = $2
	`, versionColumns, c.tables.Versions)

	info, err := scanVersionInfo(c.conn(ctx).QueryRow(ctx, query, versionID.String(), docID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s in %s: %w", versionID, docID, database.ErrVersionNotFound)
		}
		return nil, fmt.Errorf("find version %s: %w", versionID, err)
	}

	return info, nil
}

// FindVersionInfosByPaging returns a page of the document's versions.
func (c *Client) FindVersionInfosByPaging(
	ctx context.Context,
	docID types.ID,
	filter database.VersionFilter,
	offset int,
	limit int,
) ([]*database.VersionInfo, int, error) {
	where := []string{"doc_id = $1"}
	args := []any{docID.String()}
	if filter.Source != nil {
		args = append(args, filter.Source.String())
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.Pinned != nil {
		args = append(args, *filter.Pinned)
		where = append(where, fmt.Sprintf("is_pinned = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, c.tables.Versions, cond)
	if err := c.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count versions of %s: %w", docID, err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY is_pinned DESC, seq DESC
		OFFSET %d
	`, versionColumns, c.tables.Versions, cond, offset)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := c.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("find versions of %s: %w", docID, err)
	}
	defer rows.Close()

	var infos []*database.VersionInfo
	for rows.Next() {
		info, err := scanVersionInfo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan version: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("fetch versions: %w", err)
	}

	return infos, total, nil
}

// UpdateVersionInfoPinned sets the pin flag of the version.
func (c *Client) UpdateVersionInfoPinned(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
	pinned bool,
) (*database.VersionInfo, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET is_pinned = $3
		WHERE id = $1 AND doc_id = $2
		RETURNING %s
	`, c.tables.Versions, versionColumns)

	info, err := scanVersionInfo(c.conn(ctx).QueryRow(ctx, query, versionID.String(), docID.String(), pinned))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s in %s: %w", versionID, docID, database.ErrVersionNotFound)
		}
		return nil, fmt.Errorf("update version %s: %w", versionID, err)
	}

	return info, nil
}

// DeleteVersionInfo deletes the version.
func (c *Client) DeleteVersionInfo(
	ctx context.Context,
	docID types.ID,
	versionID types.ID,
) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND doc_id = $2`, c.tables.Versions)

	tag, err := c.conn(ctx).Exec(ctx, query, versionID.String(), docID.String())
	if err != nil {
		return fmt.Errorf("delete version %s: %w", versionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s in %s: %w", versionID, docID, database.ErrVersionNotFound)
	}

	return nil
}

func scanDocInfo(row pgx.Row) (*database.DocInfo, error) {
	var id string
	var current *string
	info := &database.DocInfo{}
	if err := row.Scan(&id, &info.Content, &current, &info.CreatedAt, &info.UpdatedAt); err != nil {
		return nil, err
	}

	info.ID = types.ID(id)
	if current != nil {
		info.CurrentVersionID = types.ID(*current)
	}
	return info, nil
}

func scanVersionInfo(row pgx.Row) (*database.VersionInfo, error) {
	var id, docID, source string
	info := &database.VersionInfo{}
	if err := row.Scan(
		&id,
		&docID,
		&info.Seq,
		&info.Content,
		&info.PlainText,
		&info.WordCount,
		&info.IsSnapshot,
		&source,
		&info.Label,
		&info.IsPinned,
		&info.AuthorID,
		&info.CreatedAt,
	); err != nil {
		return nil, err
	}

	info.ID = types.ID(id)
	info.DocID = types.ID(docID)
	info.Source = types.VersionSource(source)
	return info, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

// timeNow returns the current time in the precision that timestamptz keeps.
func timeNow() gotime.Time {
	return gotime.Now().UTC().Truncate(gotime.Microsecond)
}
