package counters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/server/models"
)

type queries struct {
	increment string
	get       string
}

// The increment is a single upsert so concurrent callers never lose updates.
var postgresQueries = queries{
	increment: `
		INSERT INTO downloads (gif_name, count, updated_at, eastern_time)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (gif_name)
		DO UPDATE SET
			count = downloads.count + 1,
			updated_at = EXCLUDED.updated_at,
			eastern_time = EXCLUDED.eastern_time
		RETURNING count`,
	get: `SELECT gif_name, count, updated_at, eastern_time FROM downloads WHERE gif_name = $1`,
}

var sqliteQueries = queries{
	increment: `
		INSERT INTO downloads (gif_name, count, updated_at, eastern_time)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (gif_name)
		DO UPDATE SET
			count = downloads.count + 1,
			updated_at = excluded.updated_at,
			eastern_time = excluded.eastern_time
		RETURNING count`,
	get: `SELECT gif_name, count, updated_at, eastern_time FROM downloads WHERE gif_name = ?`,
}

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
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

func (r *SQLRepository) Increment(ctx context.Context, gifName string, at time.Time, display string) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, r.q.increment, gifName, at.UTC(), display).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *SQLRepository) Get(ctx context.Context, gifName string) (*models.DownloadCounter, error) {
	c := &models.DownloadCounter{}
	err := r.db.QueryRowContext(ctx, r.q.get, gifName).Scan(&c.GifName, &c.Count, &c.UpdatedAt, &c.EasternTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
