// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-field-sync/internal/logger"
)

type Workers struct {
	workers []Worker
	logger  *logger.Logger
}

func NewWorkers(logger *logger.Logger, workers ...Worker) *Workers {
	return &Workers{workers: workers, logger: logger}
}

// Run starts every worker and blocks until all of them have returned. The
// first failure cancels the others and is returned.
func (w *Workers) Run(ctx context.Context) error {
	w.logger.Info().Str("func", "Workers.Run").Strs("workers", w.Names()).Msg("starting workers")

	g, gctx := errgroup.WithContext(ctx)
	for _, worker := range w.workers {
		g.Go(func() error {
			w.logger.Info().Str("func", "Workers.Run").Str("worker", worker.Name()).Msg("worker started")
			err := worker.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Err(err).Str("func", "Workers.Run").Str("worker", worker.Name()).Msg("worker failed")
				return fmt.Errorf("worker %s: %w", worker.Name(), err)
			}
			w.logger.Info().Str("func", "Workers.Run").Str("worker", worker.Name()).Msg("worker stopped")
			return nil
		})
	}
	return g.Wait()
}

// Names lists the workers in start order.
func (w *Workers) Names() []string {
	names := make([]string, len(w.workers))
	for i, worker := range w.workers {
		names[i] = worker.Name()
	}
	return names
}

// every calls fn on each tick of interval until ctx is done. When
// immediate is set fn also runs once before the first tick.
func every(ctx context.Context, interval time.Duration, immediate bool, fn func(ctx context.Context)) error {
	if immediate {
		fn(ctx)
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn(ctx)
		}
	}
}
