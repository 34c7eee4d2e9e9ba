// Package geocache stores geolocation answers keyed by IP. Freshness is
// decided by the reader; the stores only upsert and fetch.
package geocache

import (
	"context"

	"github.com/chippom/ChipsGIFs/internal/server/models"
)

type Repository interface {
	// Get returns the cached entry for ip or common.ErrorNotFound.
	Get(ctx context.Context, ip string) (*models.GeoCacheEntry, error)

	// Upsert writes e keyed by e.IP; the last writer wins.
	Upsert(ctx context.Context, e *models.GeoCacheEntry) error
}
