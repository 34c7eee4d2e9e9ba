package geocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/server/models"
)

type queries struct {
	get    string
	upsert string
}

var postgresQueries = queries{
	get: `SELECT ip, city, region, country, location, cached_at FROM ip_location_cache WHERE ip = $1`,
	upsert: `
		INSERT INTO ip_location_cache (ip, city, region, country, location, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ip)
		DO UPDATE SET
			city = EXCLUDED.city,
			region = EXCLUDED.region,
			country = EXCLUDED.country,
			location = EXCLUDED.location,
			cached_at = EXCLUDED.cached_at`,
}

var sqliteQueries = queries{
	get: `SELECT ip, city, region, country, location, cached_at FROM ip_location_cache WHERE ip = ?`,
	upsert: `
		INSERT INTO ip_location_cache (ip, city, region, country, location, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (ip)
		DO UPDATE SET
			city = excluded.city,
			region = excluded.region,
			country = excluded.country,
			location = excluded.location,
			cached_at = excluded.cached_at`,
}

// SQLRepository keeps the cache in the ip_location_cache table.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func (r *SQLRepository) Get(ctx context.Context, ip string) (*models.GeoCacheEntry, error) {
	var city, region, country sql.NullString
	e := &models.GeoCacheEntry{}

	err := r.db.QueryRowContext(ctx, r.q.get, ip).Scan(&e.IP, &city, &region, &country, &e.Location, &e.CachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	e.City, e.Region, e.Country = city.String, region.String, country.String
	return e, nil
}

func (r *SQLRepository) Upsert(ctx context.Context, e *models.GeoCacheEntry) error {
	_, err := r.db.ExecContext(ctx, r.q.upsert,
		e.IP, dbx.NullString(e.City), dbx.NullString(e.Region), dbx.NullString(e.Country), e.Location, e.CachedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
