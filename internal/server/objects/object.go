// Package objects retrieves GIF binaries. A Chain consults its sources in
// order: the S3-compatible object store, a static directory, then a remote
// mirror.
package objects

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/logging"
)

// Object is an open GIF body. The caller must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64 // -1 when unknown
	Source      string
}

// Source opens objects by exact name. A missing object is reported as
// common.ErrorNotFound.
type Source interface {
	Name() string
	Open(ctx context.Context, name string) (*Object, error)
}

// Chain tries each source in order and serves the first hit.
type Chain struct {
	sources []Source
	log     logging.Logger
}

func NewChain(log logging.Logger, sources ...Source) *Chain {
	return &Chain{sources: sources, log: log.With("module", "objects")}
}

// Sources lists the configured source names in lookup order.
func (c *Chain) Sources() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

// Open returns the first object found. When every source reports not
// found the result is common.ErrorNotFound; when at least one source
// failed for another reason and none had the object, the failures are
// joined under common.ErrorUpstream.
func (c *Chain) Open(ctx context.Context, name string) (*Object, error) {
	var errs []error

	for _, s := range c.sources {
		obj, err := s.Open(ctx, name)
		if err == nil {
			if obj.Source == "" {
				obj.Source = s.Name()
			}
			if obj.ContentType == "" {
				obj.ContentType = common.DefaultContentType
			}
			return obj, nil
		}
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}

		c.log.Warn(ctx, "object source failed", "source", s.Name(), "gif_name", name, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", common.ErrorUpstream, errors.Join(errs...))
	}
	return nil, common.ErrorNotFound
}
