// Package repomanager vends repositories bound to a dbx.DBTX for the
// configured database dialect and applies that dialect's migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/counters"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/geocache"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/visits"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Counters(db dbx.DBTX) counters.Repository
	GeoCache(db dbx.DBTX) geocache.Repository
	Visits(db dbx.DBTX) visits.Repository
}

// New returns the manager for driver ("postgres" or "sqlite").
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case dbx.DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	}
	return nil, fmt.Errorf("no repositories for driver %q", driver)
}
