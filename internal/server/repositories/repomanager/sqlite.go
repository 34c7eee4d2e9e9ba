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

// SQLiteRepositoryManager vends SQLite-backed repositories for local runs
// and tests.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Counters(db dbx.DBTX) counters.Repository {
	return counters.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) GeoCache(db dbx.DBTX) geocache.Repository {
	return geocache.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Visits(db dbx.DBTX) visits.Repository {
	return visits.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, migrations.DialectSQLite)
}
