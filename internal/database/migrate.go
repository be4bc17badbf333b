package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations applies all pending migrations and returns how many ran.
// Call it once at startup before the server accepts requests.
func RunMigrations(db *sql.DB) (int, error) {
	return RunMigrationsContext(context.Background(), db)
}

// RunMigrationsContext is RunMigrations with a caller-supplied context.
func RunMigrationsContext(ctx context.Context, db *sql.DB) (int, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("database: migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("database: new migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("database: run migrations: %w", err)
	}

	return len(results), nil
}
