package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/metrics"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/counters"
	"github.com/chippom/ChipsGIFs/internal/server/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type CounterService struct {
	repo  counters.Repository
	clock Clock
	log   logging.Logger
}

func NewCounterService(repo counters.Repository, clock Clock, log logging.Logger) *CounterService {
	return &CounterService{repo: repo, clock: clock, log: log.With("module", "counter")}
}

// Increment bumps the download counter for gifName by one and returns the
// count reported by the store. Store failures surface as
// common.ErrorInternal.
func (s *CounterService) Increment(ctx context.Context, gifName string) (int64, error) {
	ctx, span := otel.Tracer("chipsgifs/services").Start(ctx, "counter.increment")
	defer span.End()
	span.SetAttributes(attribute.String("gif.name", gifName))

	if err := validation.GifName(gifName); err != nil {
		return 0, err
	}

	at, display := s.clock.Stamp()
	n, err := s.repo.Increment(ctx, gifName, at, display)
	metrics.CounterIncrements.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		span.RecordError(err)
		s.log.Error(ctx, "counter increment failed", "gif_name", gifName, "err", err)
		return 0, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return n, nil
}

// Count returns the stored count, 0 when the GIF has never been counted.
func (s *CounterService) Count(ctx context.Context, gifName string) (int64, error) {
	if err := validation.GifName(gifName); err != nil {
		return 0, err
	}

	c, err := s.repo.Get(ctx, gifName)
	if errors.Is(err, common.ErrorNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrorUpstream, err)
	}
	return c.Count, nil
}
