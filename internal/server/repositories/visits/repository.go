// Package visits appends analytics rows: visitor logs, download events and
// download summaries. Every call inserts exactly one row.
package visits

import (
	"context"

	"github.com/chippom/ChipsGIFs/internal/server/models"
)

type Repository interface {
	InsertVisitorLog(ctx context.Context, v *models.VisitorLog) error
	InsertDownload(ctx context.Context, d *models.DownloadEvent) error
	InsertSummary(ctx context.Context, s *models.DownloadSummary) error
}
