package services

import (
	"context"
	"errors"
	"time"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/netx"
	"github.com/chippom/ChipsGIFs/internal/server/geoip"
	"github.com/chippom/ChipsGIFs/internal/server/metrics"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/geocache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Lookuper is the external geolocation provider.
type Lookuper interface {
	Enabled() bool
	Lookup(ctx context.Context, ip string) (geoip.Result, error)
}

// GeoService resolves client addresses cache-aside: a fresh cache entry
// answers directly, anything else goes to the provider once and is
// written back. It never returns an error.
type GeoService struct {
	cache geocache.Repository
	api   Lookuper
	ttl   time.Duration
	clock Clock
	log   logging.Logger
}

func NewGeoService(cache geocache.Repository, api Lookuper, ttl time.Duration, clock Clock, log logging.Logger) *GeoService {
	return &GeoService{cache: cache, api: api, ttl: ttl, clock: clock, log: log.With("module", "geo")}
}

func sentinel(src models.LocationSource) models.Location {
	return models.Location{Display: common.LookupDisabled, Source: src}
}

func (s *GeoService) Resolve(ctx context.Context, ip string) models.Location {
	ctx, span := otel.Tracer("chipsgifs/services").Start(ctx, "geo.resolve")
	defer span.End()

	loc := s.resolve(ctx, ip)
	span.SetAttributes(attribute.String("geo.source", string(loc.Source)))
	metrics.GeoLookups.WithLabelValues(string(loc.Source)).Inc()
	return loc
}

func (s *GeoService) resolve(ctx context.Context, ip string) models.Location {
	if ip == common.UnknownIP || !netx.PublicIP(ip) {
		return sentinel(models.SourceDisabled)
	}

	now := s.clock.now()

	cached, err := s.cache.Get(ctx, ip)
	switch {
	case err == nil && cached.Fresh(now, s.ttl):
		return models.Location{
			City:    cached.City,
			Region:  cached.Region,
			Country: cached.Country,
			Display: cached.Location,
			Source:  models.SourceCache,
		}
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		s.log.Warn(ctx, "geo cache read failed", "ip", ip, "err", err)
	}

	if !s.api.Enabled() {
		return sentinel(models.SourceDisabled)
	}

	res, err := s.api.Lookup(ctx, ip)
	if err != nil {
		s.log.Warn(ctx, "geo lookup failed", "ip", ip, "err", err)
		return sentinel(models.SourceFailed)
	}

	entry := &models.GeoCacheEntry{
		IP:       ip,
		City:     res.City,
		Region:   res.Region,
		Country:  res.Country,
		Location: res.Compose(common.UnknownLocation),
		CachedAt: now,
	}
	if err := s.cache.Upsert(ctx, entry); err != nil {
		s.log.Warn(ctx, "geo cache write failed", "ip", ip, "err", err)
		return sentinel(models.SourceFailed)
	}

	return models.Location{
		City:    entry.City,
		Region:  entry.Region,
		Country: entry.Country,
		Display: entry.Location,
		Source:  models.SourceAPI,
	}
}
