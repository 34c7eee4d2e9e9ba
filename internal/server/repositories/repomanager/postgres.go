package repomanager

import (
	"context"
	"database/sql"

	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/server/migrations"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/counters"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/geocache"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/visits"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Counters(db dbx.DBTX) counters.Repository {
	return counters.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) GeoCache(db dbx.DBTX) geocache.Repository {
	return geocache.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Visits(db dbx.DBTX) visits.Repository {
	return visits.NewPostgresRepository(db)
}

// runMigrations is a seam for tests.
var runMigrations = migrations.Up

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, migrations.DialectPostgres)
}
