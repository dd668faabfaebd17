// Package store is the persistence gateway. All reads and writes go through
// Gateway.Scope, which hands the caller a Tx bound to one database
// transaction; Gateway itself exposes no way to touch a table directly.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vetclinic/m/internal/logger"
)

type Gateway struct {
	db  *sqlx.DB
	log logger.Logger
}

func New(db *sqlx.DB, log logger.Logger) *Gateway {
	return &Gateway{db: db, log: log.With(map[string]any{"component": "store"})}
}

// Scope runs fn inside a single transaction. The transaction commits when fn
// returns nil; otherwise every write made through tx is rolled back and fn's
// error is returned unchanged. A panic in fn rolls back and re-panics. Tx must
// not be retained after fn returns and scopes cannot be nested.
func (g *Gateway) Scope(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fault("begin", err)
	}
	tx := &Tx{tx: sqlTx}

	defer func() {
		if p := recover(); p != nil {
			g.rollback(sqlTx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		g.rollback(sqlTx, err)
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fault("commit", err)
	}
	return nil
}

func (g *Gateway) rollback(tx *sqlx.Tx, cause error) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		g.log.Error("rollback failed", map[string]any{"error": err, "cause": cause})
		return
	}
	g.log.Warn("transaction rolled back", map[string]any{"cause": cause})
}

// Tx is the unit of work handed to a scope. Its methods wrap driver errors
// as PersistenceError and map missing rows to ErrNotFound.
type Tx struct {
	tx *sqlx.Tx
}

func (t *Tx) get(ctx context.Context, op string, dest any, query string, args ...any) error {
	err := t.tx.GetContext(ctx, dest, t.tx.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fault(op, err)
}

func (t *Tx) list(ctx context.Context, op string, dest any, query string, args ...any) error {
	return fault(op, t.tx.SelectContext(ctx, dest, t.tx.Rebind(query), args...))
}

func (t *Tx) insert(ctx context.Context, op string, query string, args ...any) (int64, error) {
	var id int64
	if err := t.tx.QueryRowxContext(ctx, t.tx.Rebind(query+` RETURNING id`), args...).Scan(&id); err != nil {
		return 0, fault(op, err)
	}
	return id, nil
}

// exec runs a statement that must touch at least one row; zero affected rows
// means the target did not exist.
func (t *Tx) exec(ctx context.Context, op string, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
	if err != nil {
		return fault(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fault(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (t *Tx) count(ctx context.Context, op string, query string, args ...any) (int64, error) {
	var n int64
	if err := t.tx.GetContext(ctx, &n, t.tx.Rebind(query), args...); err != nil {
		return 0, fault(op, err)
	}
	return n, nil
}
