package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TableExists reports whether table is present in the connected database.
func TableExists(ctx context.Context, q sqlx.QueryerContext, driver, table string) (bool, error) {
	var stmt string
	switch driver {
	case "pgx", "postgres":
		stmt = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
	default:
		stmt = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	}

	var n int
	if err := sqlx.GetContext(ctx, q, &n, stmt, table); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return n > 0, nil
}
