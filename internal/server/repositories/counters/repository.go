// Package counters persists the per-GIF download counter.
package counters

import (
	"context"
	"time"

	"github.com/chippom/ChipsGIFs/internal/server/models"
)

type Repository interface {
	// Increment adds one to the counter for gifName, creating the row with
	// count 1 when it does not exist, and returns the stored count.
	Increment(ctx context.Context, gifName string, at time.Time, display string) (int64, error)

	// Get returns the counter row or common.ErrorNotFound.
	Get(ctx context.Context, gifName string) (*models.DownloadCounter, error)
}
