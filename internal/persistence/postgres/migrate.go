package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed 001_initial_schema.sql
var initialSchema string

// RunMigrations executes the schema defined in 001_initial_schema.sql.
// A simple idempotent runner is sufficient here; a production
// deployment would use a proper migration tool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, initialSchema); err != nil {
		return fmt.Errorf("postgres: run migrations: %w", err)
	}
	return nil
}
