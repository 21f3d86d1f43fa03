package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRollback, returned from a WithinTx func, discards the transaction's
// writes without failing the call. Dry runs use it to count what would
// change.
var ErrRollback = errors.New("rollback requested")

// DBTX is the query surface shared by *sql.DB and *sql.Tx. Repositories
// take it so the same code runs against the pool or inside a UnitOfWork.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// TxFunc is the body of a unit of work.
type TxFunc func(ctx context.Context, tx DBTX) error

// UnitOfWork runs fn inside one transaction. Applying an interpreted
// command or a calendar import goes through here so a failed write leaves
// the store untouched.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	return Finish(tx, run(ctx, tx, fn))
}

// run calls fn, rolling back and re-panicking if it panics.
func run(ctx context.Context, tx *sql.Tx, fn TxFunc) error {
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	return fn(ctx, tx)
}

// Finish commits tx when fnErr is nil and rolls it back otherwise.
// ErrRollback rolls back and reports success.
func Finish(tx *sql.Tx, fnErr error) error {
	if fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, fnErr)
		}
		if errors.Is(fnErr, ErrRollback) {
			return nil
		}
		return fnErr
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
