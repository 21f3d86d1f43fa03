package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/famcoord/famcoord/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func addMember(ctx context.Context, tx db.DBTX, id, name string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO members (id, name, created_at) VALUES (?, ?, '2025-10-24T00:00:00Z')`, id, name)
	return err
}

// memberCount must only be called with no transaction open: the in-memory
// store has a single connection.
func memberCount(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&n))
	return n
}

func TestWithinTx_Commits(t *testing.T) {
	database, uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := addMember(ctx, tx, "m1", "Emma"); err != nil {
			return err
		}
		return addMember(ctx, tx, "m2", "Liam")
	})

	require.NoError(t, err)
	assert.Equal(t, 2, memberCount(t, database))
}

func TestWithinTx_FailedStatementDiscardsEarlierWrites(t *testing.T) {
	database, uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := addMember(ctx, tx, "m1", "Emma"); err != nil {
			return err
		}
		// Names are unique regardless of case.
		return addMember(ctx, tx, "m2", "EMMA")
	})

	require.Error(t, err)
	assert.Zero(t, memberCount(t, database))
}

func TestWithinTx_ReturnsCallerError(t *testing.T) {
	database, uow := newUoW(t)
	stop := errors.New("member limit reached")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		require.NoError(t, addMember(ctx, tx, "m1", "Emma"))
		return fmt.Errorf("adding Liam: %w", stop)
	})

	assert.ErrorIs(t, err, stop)
	assert.Zero(t, memberCount(t, database))
}

func TestWithinTx_PanicRollsBackAndPropagates(t *testing.T) {
	database, uow := newUoW(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = addMember(ctx, tx, "m1", "Emma")
			panic("boom")
		})
	})

	assert.Zero(t, memberCount(t, database))
}

func TestWithinTx_ErrRollbackDiscardsWithoutError(t *testing.T) {
	database, uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		require.NoError(t, addMember(ctx, tx, "m1", "Emma"))
		return fmt.Errorf("dry run: %w", db.ErrRollback)
	})

	require.NoError(t, err)
	assert.Zero(t, memberCount(t, database))
}

func TestFinish_ReportsRollbackFailure(t *testing.T) {
	database, _ := newUoW(t)

	tx, err := database.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	cause := errors.New("write failed")
	err = db.Finish(tx, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "rollback failed")
}
