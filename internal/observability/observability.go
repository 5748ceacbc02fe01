// Package observability wires tracing and profiling for the api binary.
package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/BigB742/bigb-analyzer/internal/config"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
)

// Stack holds the stop hooks of every enabled telemetry component.
type Stack struct {
	stopTracing  func(context.Context) error
	stopProfiler func() error
	pprof        *http.Server
	logger       *logging.Logger
}

// Setup starts tracing, continuous profiling and the pprof listener. A
// failure part way stops whatever already started.
func Setup(cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("observability")

	stack := &Stack{logger: logger, stopTracing: startTracing(cfg, logger)}

	stopProfiler, err := startProfiler(cfg, logger)
	if err != nil {
		_ = stack.Shutdown(context.Background())
		return nil, err
	}
	stack.stopProfiler = stopProfiler

	srv, err := startPprof(cfg, logger)
	if err != nil {
		_ = stack.Shutdown(context.Background())
		return nil, err
	}
	stack.pprof = srv
	return stack, nil
}

// Shutdown stops components in reverse start order.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	errs = append(errs, stopPprof(ctx, s.pprof))
	if s.stopProfiler != nil {
		errs = append(errs, s.stopProfiler())
	}
	if s.stopTracing != nil {
		errs = append(errs, s.stopTracing(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("observability shutdown incomplete", "error", err)
		return err
	}
	return nil
}
