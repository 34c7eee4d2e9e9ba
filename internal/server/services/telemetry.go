package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/metrics"
	"github.com/chippom/ChipsGIFs/internal/settle"
)

// scatter runs best-effort writes side by side. Failures are logged and
// counted, then joined for the caller to ignore or report.
func scatter(ctx context.Context, log logging.Logger, tasks ...settle.Task) error {
	var errs []error
	for _, o := range settle.All(ctx, tasks...) {
		metrics.TelemetryTasks.WithLabelValues(o.Name, metrics.Result(o.Err)).Inc()
		if o.Err != nil {
			log.Warn(ctx, "analytics write failed", "task", o.Name, "elapsed", o.Elapsed, "err", o.Err)
			errs = append(errs, fmt.Errorf("%s: %w", o.Name, o.Err))
		}
	}
	return errors.Join(errs...)
}
