package visits

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/server/migrations"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(t *testing.T, id string) {
	t.Helper()
	orig := newID
	newID = func() string { return id }
	t.Cleanup(func() { newID = orig })
}

func TestPostgres_InsertVisitorLog(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	fixedID(t, "11111111-1111-1111-1111-111111111111")

	at := time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)
	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+visitor_logs\b`).
		WithArgs("11111111-1111-1111-1111-111111111111", "v-1", "curl", "/gallery", "none",
			sql.NullString{}, "lookup disabled", sql.NullString{}, "unknown", at, "disp").
		WillReturnResult(sqlmock.NewResult(0, 1))

	v := &models.VisitorLog{
		VisitorID: "v-1", UserAgent: "curl", Page: "/gallery", Referrer: "none",
		Location: "lookup disabled", IP: "unknown", CreatedAt: at, EasternTime: "disp",
	}
	require.NoError(t, NewPostgresRepository(db).InsertVisitorLog(context.Background(), v))
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", v.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT\s+INTO\s+gif_downloads\b`).WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, repo.InsertDownload(ctx, &models.DownloadEvent{ID: "x"}), "insert download: db down")

	mock.ExpectExec(`INSERT\s+INTO\s+gif_download_summary\b`).WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, repo.InsertSummary(ctx, &models.DownloadSummary{ID: "x"}), "insert summary: db down")

	mock.ExpectExec(`INSERT\s+INTO\s+visitor_logs\b`).WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, repo.InsertVisitorLog(ctx, &models.VisitorLog{ID: "x"}), "insert visitor log: db down")
}

func TestSQLite_EventsAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.DriverSQLite, filepath.Join(t.TempDir(), "visits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.DialectSQLite))

	repo := NewSQLiteRepository(db)
	now := time.Now()

	// the same visitor twice keeps both rows
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.InsertVisitorLog(ctx, &models.VisitorLog{
			VisitorID: "same", UserAgent: "ua", Page: "/", Referrer: "none", GifName: "a.gif",
			Location: "Paris, FR", Country: "FR", IP: "1.2.3.4", CreatedAt: now,
		}))
		require.NoError(t, repo.InsertDownload(ctx, &models.DownloadEvent{
			GifName: "a.gif", VisitorID: "same", Page: "/", Method: models.MethodBeacon, IP: "1.2.3.4", CreatedAt: now,
		}))
		require.NoError(t, repo.InsertSummary(ctx, &models.DownloadSummary{
			GifName: "a.gif", Referrer: "none", Location: "Paris, FR", CreatedAt: now,
		}))
	}

	for _, table := range []string{"visitor_logs", "gif_downloads", "gif_download_summary"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Equal(t, 2, n, table)
	}

	var country sql.NullString
	require.NoError(t, db.QueryRow(`SELECT country FROM gif_download_summary LIMIT 1`).Scan(&country))
	assert.False(t, country.Valid, "empty country is stored as NULL")
}
