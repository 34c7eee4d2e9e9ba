package geocache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/server/migrations"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_UpsertUsesConflictOnIP(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := `(?s)^\s*INSERT\s+INTO\s+ip_location_cache\b.*ON\s+CONFLICT\s*\(ip\)\s*DO\s+UPDATE\s+SET\b.*cached_at\s*=\s*EXCLUDED\.cached_at\s*$`

	mock.ExpectExec(q).
		WithArgs("8.8.8.8", sql.NullString{String: "Mountain View", Valid: true}, sql.NullString{}, sql.NullString{String: "US", Valid: true}, "Mountain View, US", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), &models.GeoCacheEntry{
		IP: "8.8.8.8", City: "Mountain View", Country: "US", Location: "Mountain View, US", CachedAt: at,
	})
	require.NoError(t, err)

	mock.ExpectExec(q).WillReturnError(errors.New("db down"))
	err = repo.Upsert(context.Background(), &models.GeoCacheEntry{IP: "8.8.8.8", CachedAt: at})
	assert.ErrorContains(t, err, "db error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMapsNulls(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := `^SELECT ip, city, region, country, location, cached_at FROM ip_location_cache WHERE ip = \$1$`

	mock.ExpectQuery(q).WithArgs("9.9.9.9").
		WillReturnRows(sqlmock.NewRows([]string{"ip", "city", "region", "country", "location", "cached_at"}).
			AddRow("9.9.9.9", nil, nil, "CH", "CH", at))
	e, err := repo.Get(context.Background(), "9.9.9.9")
	require.NoError(t, err)
	assert.Empty(t, e.City)
	assert.Empty(t, e.Region)
	assert.Equal(t, "CH", e.Country)
	assert.Equal(t, at, e.CachedAt)

	mock.ExpectQuery(q).WithArgs("1.2.3.4").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "1.2.3.4")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.DriverSQLite, filepath.Join(t.TempDir(), "geo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.DialectSQLite))

	repo := NewSQLiteRepository(db)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &models.GeoCacheEntry{IP: "8.8.8.8", City: "Old", Location: "Old", CachedAt: t0}))
	require.NoError(t, repo.Upsert(ctx, &models.GeoCacheEntry{IP: "8.8.8.8", City: "New", Country: "US", Location: "New, US", CachedAt: t0.Add(time.Hour)}))

	e, err := repo.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "New", e.City)
	assert.Equal(t, "New, US", e.Location)
	assert.True(t, t0.Add(time.Hour).Equal(e.CachedAt))

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ip_location_cache`).Scan(&rows))
	assert.Equal(t, 1, rows)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
