package visits

import (
	"context"
	"fmt"

	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/google/uuid"
)

type queries struct {
	visitorLog string
	download   string
	summary    string
}

var postgresQueries = queries{
	visitorLog: `
		INSERT INTO visitor_logs (id, visitor_id, user_agent, page, referrer, gif_name, location, country, ip, created_at, eastern_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
	download: `
		INSERT INTO gif_downloads (id, gif_name, visitor_id, page, method, ip, created_at, eastern_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	summary: `
		INSERT INTO gif_download_summary (id, gif_name, referrer, location, country, created_at, eastern_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

var sqliteQueries = queries{
	visitorLog: `
		INSERT INTO visitor_logs (id, visitor_id, user_agent, page, referrer, gif_name, location, country, ip, created_at, eastern_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	download: `
		INSERT INTO gif_downloads (id, gif_name, visitor_id, page, method, ip, created_at, eastern_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	summary: `
		INSERT INTO gif_download_summary (id, gif_name, referrer, location, country, created_at, eastern_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
}

// SQLRepository implements Repository over a dbx.DBTX. Rows without an ID
// get a fresh UUID.
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

// newID is a seam for tests.
var newID = func() string { return uuid.NewString() }

func ensureID(id *string) {
	if *id == "" {
		*id = newID()
	}
}

func (r *SQLRepository) InsertVisitorLog(ctx context.Context, v *models.VisitorLog) error {
	ensureID(&v.ID)
	_, err := r.db.ExecContext(ctx, r.q.visitorLog,
		v.ID, v.VisitorID, v.UserAgent, v.Page, v.Referrer, dbx.NullString(v.GifName),
		v.Location, dbx.NullString(v.Country), v.IP, v.CreatedAt.UTC(), v.EasternTime)
	if err != nil {
		return fmt.Errorf("insert visitor log: %w", err)
	}
	return nil
}

func (r *SQLRepository) InsertDownload(ctx context.Context, d *models.DownloadEvent) error {
	ensureID(&d.ID)
	_, err := r.db.ExecContext(ctx, r.q.download,
		d.ID, d.GifName, d.VisitorID, d.Page, d.Method, d.IP, d.CreatedAt.UTC(), d.EasternTime)
	if err != nil {
		return fmt.Errorf("insert download: %w", err)
	}
	return nil
}

func (r *SQLRepository) InsertSummary(ctx context.Context, s *models.DownloadSummary) error {
	ensureID(&s.ID)
	_, err := r.db.ExecContext(ctx, r.q.summary,
		s.ID, s.GifName, s.Referrer, s.Location, dbx.NullString(s.Country), s.CreatedAt.UTC(), s.EasternTime)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}
