package services

import (
	"context"
	"errors"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/metrics"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/chippom/ChipsGIFs/internal/server/objects"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/counters"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/visits"
	"github.com/chippom/ChipsGIFs/internal/server/validation"
	"github.com/chippom/ChipsGIFs/internal/settle"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Opener is the object retrieval chain.
type Opener interface {
	Open(ctx context.Context, name string) (*objects.Object, error)
}

// Background runs best-effort work after the response has been sent.
type Background interface {
	Go(ctx context.Context, tasks ...settle.Task) bool
}

// Download describes one /api/deliver call.
type Download struct {
	GifName   string
	IP        string
	UserAgent string
	Referer   string

	// HeadOnly marks an availability check; nothing is recorded.
	HeadOnly bool
}

const (
	anonymousVisitor = "anonymous"
	directLink       = "direct-link"
	unknownAgent     = "unknown"
)

type DeliveryService struct {
	objects  Opener
	visits   visits.Repository
	counters counters.Repository // nil unless deliveries are counted
	geo      Resolver
	bg       Background
	clock    Clock
	log      logging.Logger
}

// NewDeliveryService wires delivery. Pass a nil counters repository to
// leave counting to /api/update.
func NewDeliveryService(objs Opener, visitsRepo visits.Repository, countersRepo counters.Repository,
	geo Resolver, bg Background, clock Clock, log logging.Logger) *DeliveryService {
	return &DeliveryService{
		objects:  objs,
		visits:   visitsRepo,
		counters: countersRepo,
		geo:      geo,
		bg:       bg,
		clock:    clock,
		log:      log.With("module", "delivery"),
	}
}

// Deliver validates the name and opens the object. On success, analytics
// for the download are queued in the background; their outcome never
// reaches the caller.
func (s *DeliveryService) Deliver(ctx context.Context, d Download) (*objects.Object, error) {
	ctx, span := otel.Tracer("chipsgifs/services").Start(ctx, "delivery.deliver")
	defer span.End()
	span.SetAttributes(attribute.String("gif.name", d.GifName))

	if err := validation.GifName(d.GifName); err != nil {
		return nil, err
	}

	obj, err := s.objects.Open(ctx, d.GifName)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		metrics.Deliveries.WithLabelValues("not_found").Inc()
		return nil, err
	case err != nil:
		metrics.Deliveries.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, err
	}

	metrics.Deliveries.WithLabelValues(obj.Source).Inc()
	span.SetAttributes(attribute.String("gif.source", obj.Source))

	if d.HeadOnly {
		return obj, nil
	}
	if !s.bg.Go(ctx, settle.Task{Name: "delivery_analytics", Fn: func(ctx context.Context) error {
		return s.record(ctx, d, obj.Source)
	}}) {
		s.log.Warn(ctx, "analytics dropped during shutdown", "gif_name", d.GifName)
	}

	return obj, nil
}

func (s *DeliveryService) record(ctx context.Context, d Download, method string) error {
	loc := s.geo.Resolve(ctx, d.IP)
	at, display := s.clock.Stamp()

	referer := firstNonEmpty(d.Referer, directLink)
	agent := firstNonEmpty(d.UserAgent, unknownAgent)

	tasks := []settle.Task{
		{
			Name: "download",
			Fn: func(ctx context.Context) error {
				return s.visits.InsertDownload(ctx, &models.DownloadEvent{
					GifName:     d.GifName,
					VisitorID:   anonymousVisitor,
					Page:        referer,
					Method:      method,
					IP:          d.IP,
					CreatedAt:   at,
					EasternTime: display,
				})
			},
		},
		{
			Name: "visitor_log",
			Fn: func(ctx context.Context) error {
				return s.visits.InsertVisitorLog(ctx, &models.VisitorLog{
					VisitorID:   anonymousVisitor,
					UserAgent:   agent,
					Page:        referer,
					Referrer:    referer,
					GifName:     d.GifName,
					Location:    loc.Display,
					Country:     loc.Country,
					IP:          d.IP,
					CreatedAt:   at,
					EasternTime: display,
				})
			},
		},
		{
			Name: "summary",
			Fn: func(ctx context.Context) error {
				return s.visits.InsertSummary(ctx, &models.DownloadSummary{
					GifName:     d.GifName,
					Referrer:    referer,
					Location:    loc.Display,
					Country:     loc.Country,
					CreatedAt:   at,
					EasternTime: display,
				})
			},
		},
	}

	if s.counters != nil {
		tasks = append(tasks, settle.Task{
			Name: "counter",
			Fn: func(ctx context.Context) error {
				_, err := s.counters.Increment(ctx, d.GifName, at, display)
				return err
			},
		})
	}

	return scatter(ctx, s.log, tasks...)
}
