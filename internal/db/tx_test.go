package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/db/dbtest"
)

func countGenres(t *testing.T, database *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(&n, `SELECT COUNT(*) FROM genres`))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	database := dbtest.Open(t)

	err := db.WithTx(context.Background(), database, func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO genres (id, name) VALUES ('g1', 'Fantasy')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countGenres(t, database), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	database := dbtest.Open(t)

	err := db.WithTx(context.Background(), database, func(ctx context.Context, tx *sqlx.Tx) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO genres (id, name) VALUES ('g1', 'Fantasy')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	require.Equal(t, 0, countGenres(t, database), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	database := dbtest.Open(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countGenres(t, database), "must rollback on panic")
	}()

	_ = db.WithTx(context.Background(), database, func(ctx context.Context, tx *sqlx.Tx) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO genres (id, name) VALUES ('g1', 'Fantasy')`)
		require.NoError(t, e)
		panic("kaput")
	})
}
