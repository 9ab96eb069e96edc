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
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yorkie-team/folio/server/backend/database"
	"github.com/yorkie-team/folio/server/logging"
)

// querier is the part of a pool or a transaction that runs statements.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// txFrom returns the transaction carried by the context, if any.
func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// conn returns the transaction of the context, or the pool outside one.
func (c *Client) conn(ctx context.Context) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return c.pool
}

// ExecTx runs fn in a transaction. A nested call joins the outer
// transaction.
func (c *Client) ExecTx(ctx context.Context, fn database.TxFn) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// Rollback after commit is a no-op.
		if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.From(ctx).Warnf("rollback transaction: %v", err)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// inSavepoint runs fn on a savepoint when the context carries a transaction,
// so a failed statement does not abort the whole transaction. Outside one,
// fn runs on the pool.
func (c *Client) inSavepoint(ctx context.Context, fn func(q querier) error) error {
	tx, ok := txFrom(ctx)
	if !ok {
		return fn(c.pool)
	}

	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback savepoint: %w", rbErr))
		}
		return err
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
