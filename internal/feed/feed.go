// Package feed drives the synthetic transaction stream: a loop that
// emits generated transactions into the pipeline at random intervals.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/GajendraSingh33/fraud-detection-system/internal/pipeline"
	"github.com/GajendraSingh33/fraud-detection-system/internal/realtime"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

// Runner emits one generated transaction per tick, pausing a random
// interval between ticks. Not restartable after Stop.
type Runner struct {
	pipe        *pipeline.Pipeline
	gen         *transaction.Generator
	minInterval time.Duration
	maxInterval time.Duration
	logger      *slog.Logger
	stop        chan struct{}
	running     atomic.Bool
}

// NewRunner creates a feed runner.
func NewRunner(pipe *pipeline.Pipeline, gen *transaction.Generator, min, max time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		pipe:        pipe,
		gen:         gen,
		minInterval: min,
		maxInterval: max,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

// Running reports whether the feed loop is actively running.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Start begins the emission loop. Call in a goroutine. Cancellation is
// only observed between emissions; each emission runs to completion.
func (r *Runner) Start(ctx context.Context) {
	r.running.Store(true)
	defer r.running.Store(false)

	r.logger.Info("transaction feed started",
		"min_interval", r.minInterval,
		"max_interval", r.maxInterval,
	)

	for {
		timer := time.NewTimer(r.gen.Interval(r.minInterval, r.maxInterval))
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("transaction feed stopped")
			return
		case <-r.stop:
			timer.Stop()
			r.logger.Info("transaction feed stopped")
			return
		case <-timer.C:
			r.safeEmit(ctx)
		}
	}
}

// Stop signals the feed to stop.
func (r *Runner) Stop() {
	select {
	case r.stop <- struct{}{}:
	default:
	}
}

func (r *Runner) safeEmit(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic in transaction feed", "panic", fmt.Sprint(rec))
		}
	}()
	r.emit(ctx)
}

// emit generates and processes one transaction as a unit.
func (r *Runner) emit(ctx context.Context) {
	tx := r.gen.Transaction()
	if _, err := r.pipe.Process(ctx, tx, realtime.MessageRealtimeTransaction, pipeline.SourceFeed); err != nil {
		r.logger.Warn("feed transaction not processed", "transaction_id", tx.ID, "error", err)
	}
}
