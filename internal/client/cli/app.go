package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chippom/ChipsGIFs/internal/client/client"
	"github.com/chippom/ChipsGIFs/internal/client/config"
	"github.com/chippom/ChipsGIFs/internal/client/indexnow"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/objects"
)

var (
	ErrUsage          = errors.New("usage")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoBucket       = errors.New("S3 bucket not configured")
	ErrIndexNowFailed = errors.New("some IndexNow submissions failed")
)

// Publisher stores a GIF in the object store.
type Publisher interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
}

// Submitter sends URLs to IndexNow.
type Submitter interface {
	Submit(ctx context.Context, urls []string) ([]indexnow.Result, error)
}

type App struct {
	config    *config.Config
	api       client.Client
	indexnow  Submitter
	out       io.Writer
	logger    logging.Logger
	publisher func(ctx context.Context) (Publisher, error)
}

func NewApp(c *config.Config, out io.Writer, l logging.Logger) *App {
	a := &App{
		config:   c,
		api:      client.NewHTTPClient(c.ServerURL, c.RequestTimeout),
		indexnow: indexnow.NewSubmitter(c.IndexNowEndpoint, c.IndexNowKey, c.RequestTimeout),
		out:      out,
		logger:   l.With("module", "gifctl"),
	}
	a.publisher = a.s3Publisher
	return a
}

func (a *App) s3Publisher(ctx context.Context) (Publisher, error) {
	if a.config.S3Bucket == "" {
		return nil, ErrNoBucket
	}
	s3c, err := objects.NewS3Client(ctx, objects.S3Options{
		AccessKey:    a.config.S3AccessKey,
		SecretKey:    a.config.S3SecretKey,
		Region:       a.config.S3Region,
		BaseEndpoint: a.config.S3BaseEndpoint,
		UsePathStyle: a.config.S3UsePathStyle,
	})
	if err != nil {
		return nil, err
	}
	return objects.NewS3Store(s3c, a.config.S3Bucket), nil
}

// Run executes the command in args.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.help()
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		a.help()
		return nil
	case "count":
		return a.count(ctx, rest)
	case "bump":
		return a.bump(ctx, rest)
	case "fetch":
		return a.fetch(ctx, rest)
	case "ping":
		return a.ping(ctx)
	case "publish":
		return a.publish(ctx, rest)
	case "indexnow":
		return a.submitIndexNow(ctx)
	case "indexnow-key":
		return a.indexNowKey()
	}

	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Usage: gifctl [flags] <command> [args]")
	fmt.Fprintln(a.out, "Available commands: count, bump, fetch, ping, publish, indexnow, indexnow-key")
}
