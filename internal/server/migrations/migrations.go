// Package migrations embeds the goose schema for both supported dialects
// and applies it.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// FS returns the migration files for driver ("postgres" or "sqlite").
func FS(driver string) (fs.FS, string, error) {
	switch driver {
	case DialectPostgres:
		sub, err := fs.Sub(files, "postgres")
		return sub, "pgx", err
	case DialectSQLite:
		sub, err := fs.Sub(files, "sqlite")
		return sub, "sqlite3", err
	}
	return nil, "", fmt.Errorf("no migrations for driver %q", driver)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration for driver against db.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	fsys, dialect, err := FS(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}
