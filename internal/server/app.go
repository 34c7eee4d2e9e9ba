// Package server wires configuration, storage, object sources and the
// HTTP API into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/chippom/ChipsGIFs/internal/dbx"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/config"
	"github.com/chippom/ChipsGIFs/internal/server/geoip"
	"github.com/chippom/ChipsGIFs/internal/server/httpapi"
	"github.com/chippom/ChipsGIFs/internal/server/metrics"
	"github.com/chippom/ChipsGIFs/internal/server/objects"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/counters"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/geocache"
	"github.com/chippom/ChipsGIFs/internal/server/repositories/repomanager"
	"github.com/chippom/ChipsGIFs/internal/server/services"
	"github.com/chippom/ChipsGIFs/internal/settle"
	"github.com/chippom/ChipsGIFs/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

const serviceName = "chipsgifs"

var openDB = dbx.Open

type App struct {
	config *config.Config
	logger logging.Logger

	db         *sql.DB
	redis      *redis.Client
	dir        *objects.DirSource
	background *settle.Group
	handler    http.Handler

	shutdownTracing func(context.Context) error
}

// NewApp opens storage, applies migrations and builds the HTTP handler.
// Resources acquired before a failure are released.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (_ *App, err error) {
	app := &App{config: c, logger: logger.With("module", "app")}
	defer func() {
		if err != nil {
			app.Close(context.Background())
		}
	}()

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	app.shutdownTracing, err = telemetry.Setup(ctx, serviceName, c.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	app.db, err = openDB(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	cache, err := app.geoCache(ctx, rm)
	if err != nil {
		return nil, err
	}

	chain, err := app.objectChain(ctx)
	if err != nil {
		return nil, err
	}

	clock := services.NewClock(loc)
	countersRepo := rm.Counters(app.db)
	visitsRepo := rm.Visits(app.db)

	ipinfo := geoip.NewIPInfoClient(c.IPInfoBaseURL, c.IPInfoToken, c.GeoLookupTimeout)
	if !ipinfo.Enabled() {
		app.logger.Warn(ctx, "IPINFO_TOKEN not set, geolocation disabled")
	}
	geo := services.NewGeoService(cache, ipinfo, c.GeoCacheTTL, clock, logger)

	app.background = settle.NewGroup(c.TelemetryTimeout, app.reportBackground)

	var deliverCounter counters.Repository
	if c.CountOnDeliver {
		deliverCounter = countersRepo
	}

	h := httpapi.NewHandlers(
		services.NewCounterService(countersRepo, clock, logger),
		services.NewVisitService(visitsRepo, geo, clock, logger),
		services.NewDeliveryService(chain, visitsRepo, deliverCounter, geo, app.background, clock, logger),
		logger,
	)
	app.handler = httpapi.NewRouter(h, httpapi.RouterOptions{
		AllowedOrigin:  c.AllowedOrigin,
		RequestTimeout: c.RequestTimeout,
	}, logger)

	return app, nil
}

func (app *App) geoCache(ctx context.Context, rm repomanager.RepositoryManager) (geocache.Repository, error) {
	if app.config.GeoCacheBackend != config.GeoCacheRedis {
		return rm.GeoCache(app.db), nil
	}

	opt, err := redis.ParseURL(app.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	app.redis = redis.NewClient(opt)
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return geocache.NewRedisRepository(app.redis, app.config.GeoCacheTTL), nil
}

// objectChain builds the retrieval order: object store, static directory,
// remote origin. Unconfigured sources are skipped.
func (app *App) objectChain(ctx context.Context) (*objects.Chain, error) {
	c := app.config
	var sources []objects.Source

	if c.ObjectStoreEnabled() {
		client, err := objects.NewS3Client(ctx, objects.S3Options{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			UsePathStyle: c.S3UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		sources = append(sources, objects.NewS3Store(client, c.S3Bucket))
	}

	if c.StaticDir != "" {
		dir, err := objects.NewDirSource(c.StaticDir)
		if err != nil {
			app.logger.Warn(ctx, "static directory unavailable", "dir", c.StaticDir, "err", err)
		} else {
			app.dir = dir
			sources = append(sources, dir)
		}
	}

	if c.RemoteFallbackURL != "" {
		sources = append(sources, objects.NewHTTPSource(c.RemoteFallbackURL, &http.Client{Timeout: c.RequestTimeout}))
	}

	chain := objects.NewChain(app.logger, sources...)
	if len(sources) == 0 {
		app.logger.Warn(ctx, "no object sources configured, every delivery will 404")
	} else {
		app.logger.Info(ctx, "object sources", "order", chain.Sources())
	}
	return chain, nil
}

func (app *App) reportBackground(ctx context.Context, o settle.Outcome) {
	metrics.TelemetryTasks.WithLabelValues(o.Name, metrics.Result(o.Err)).Inc()
	if o.Err != nil {
		app.logger.Warn(ctx, "background task failed", "task", o.Name, "elapsed", o.Elapsed, "err", o.Err)
	}
}

// Handler returns the HTTP API.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains background analytics and releases resources.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	srv := httpapi.NewServer(app.config.HTTPAddr, app.handler, app.config.ShutdownTimeout, app.logger)
	runErr := srv.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "http server stopped", "err", runErr)
	}

	sctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, app.Close(sctx))
}

// Close drains background work within ctx and closes storage.
func (app *App) Close(ctx context.Context) error {
	var errs []error

	if app.background != nil {
		if err := app.background.Wait(ctx); err != nil {
			app.logger.Warn(ctx, "background analytics abandoned", "err", err)
			errs = append(errs, err)
		}
	}
	if app.shutdownTracing != nil {
		if err := app.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if app.dir != nil {
		if err := app.dir.Close(); err != nil {
			errs = append(errs, fmt.Errorf("static dir: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db: %w", err))
		}
	}

	app.logger.Info(ctx, "App stopped")
	return errors.Join(errs...)
}
