package services

import (
	"context"

	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/visits"
	"github.com/chippom/ChipsGIFs/internal/server/validation"
	"github.com/chippom/ChipsGIFs/internal/settle"
	"go.opentelemetry.io/otel"
)

// Resolver maps an address to a location without failing.
type Resolver interface {
	Resolve(ctx context.Context, ip string) models.Location
}

// Visit is one gallery logging call.
type Visit struct {
	VisitorID     string
	Page          string
	Referrer      string
	UserAgent     string
	GifName       string `validate:"omitempty,gifname"`
	ExcludeTester bool
	IP            string
}

const (
	fallbackPage     = "unknown"
	fallbackReferrer = "none"
)

type VisitService struct {
	repo  visits.Repository
	geo   Resolver
	clock Clock
	log   logging.Logger
}

func NewVisitService(repo visits.Repository, geo Resolver, clock Clock, log logging.Logger) *VisitService {
	return &VisitService{repo: repo, geo: geo, clock: clock, log: log.With("module", "visits")}
}

// Record resolves the visitor's location and then writes the visitor log,
// a download event (when both GIF and visitor are known) and a download
// summary (when the GIF is known) concurrently. Testers are skipped
// before any validation. An invalid GifName is rejected with common.ErrorInvalidGifName before
// anything is written; any other returned error only describes failed
// writes and callers treat it as informational.
func (s *VisitService) Record(ctx context.Context, v Visit) error {
	if v.ExcludeTester {
		s.log.Debug(ctx, "tester visit skipped", "visitor_id", v.VisitorID)
		return nil
	}

	if err := validation.Struct(v); err != nil {
		return validation.GifNameError(err)
	}

	ctx, span := otel.Tracer("chipsgifs/services").Start(ctx, "visits.record")
	defer span.End()

	loc := s.geo.Resolve(ctx, v.IP)
	at, display := s.clock.Stamp()

	page := firstNonEmpty(v.Page, v.Referrer, fallbackPage)
	referrer := firstNonEmpty(v.Referrer, fallbackReferrer)

	tasks := []settle.Task{{
		Name: "visitor_log",
		Fn: func(ctx context.Context) error {
			return s.repo.InsertVisitorLog(ctx, &models.VisitorLog{
				VisitorID:   v.VisitorID,
				UserAgent:   v.UserAgent,
				Page:        page,
				Referrer:    referrer,
				GifName:     v.GifName,
				Location:    loc.Display,
				Country:     loc.Country,
				IP:          v.IP,
				CreatedAt:   at,
				EasternTime: display,
			})
		},
	}}

	if v.GifName != "" && v.VisitorID != "" {
		tasks = append(tasks, settle.Task{
			Name: "download",
			Fn: func(ctx context.Context) error {
				return s.repo.InsertDownload(ctx, &models.DownloadEvent{
					GifName:     v.GifName,
					VisitorID:   v.VisitorID,
					Page:        page,
					Method:      models.MethodBeacon,
					IP:          v.IP,
					CreatedAt:   at,
					EasternTime: display,
				})
			},
		})
	}

	if v.GifName != "" {
		tasks = append(tasks, settle.Task{
			Name: "summary",
			Fn: func(ctx context.Context) error {
				return s.repo.InsertSummary(ctx, &models.DownloadSummary{
					GifName:     v.GifName,
					Referrer:    referrer,
					Location:    loc.Display,
					Country:     loc.Country,
					CreatedAt:   at,
					EasternTime: display,
				})
			},
		})
	}

	return scatter(ctx, s.log, tasks...)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
