package feed

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GajendraSingh33/fraud-detection-system/internal/features"
	"github.com/GajendraSingh33/fraud-detection-system/internal/pipeline"
	"github.com/GajendraSingh33/fraud-detection-system/internal/scoring"
	"github.com/GajendraSingh33/fraud-detection-system/internal/stats"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

type stubModel struct{ p float64 }

func (m stubModel) Score(features.Vector) float64 { return m.p }

type countingHub struct {
	mu sync.Mutex
	n  int
}

func (h *countingHub) Broadcast(string, any) {
	h.mu.Lock()
	h.n++
	h.mu.Unlock()
}

func (h *countingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

func newTestRunner(min, max time.Duration) (*Runner, *stats.Aggregator, *countingHub) {
	scorer := scoring.NewWithModels(0.7, features.Fit(nil), stubModel{0.1}, stubModel{0.1})
	agg := stats.New()
	hub := &countingHub{}
	pipe := pipeline.New(scorer, agg, hub, slog.Default())
	gen := transaction.NewGenerator(1)
	return NewRunner(pipe, gen, min, max, slog.Default()), agg, hub
}

func TestRunnerEmits(t *testing.T) {
	r, agg, hub := newTestRunner(time.Millisecond, 2*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go r.Start(ctx)
	require.Eventually(t, func() bool {
		return agg.Snapshot().TotalTransactions >= 3
	}, 2*time.Second, 5*time.Millisecond)

	// Each emission broadcasts the transaction and a stats update.
	assert.GreaterOrEqual(t, hub.count(), 6)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	r, _, _ := newTestRunner(time.Millisecond, 2*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	require.Eventually(t, r.Running, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after context cancellation")
	}
	assert.False(t, r.Running())
}

func TestRunnerStop(t *testing.T) {
	r, _, _ := newTestRunner(time.Millisecond, 2*time.Millisecond)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, r.Running, time.Second, time.Millisecond)
	r.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after Stop")
	}
}

func TestGeneratorInterval(t *testing.T) {
	gen := transaction.NewGenerator(1)
	for i := 0; i < 100; i++ {
		d := gen.Interval(2*time.Second, 8*time.Second)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 8*time.Second)
	}
}
