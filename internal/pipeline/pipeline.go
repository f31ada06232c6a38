// Package pipeline runs one transaction through scoring, aggregation,
// and broadcast as a single unit.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/GajendraSingh33/fraud-detection-system/internal/metrics"
	"github.com/GajendraSingh33/fraud-detection-system/internal/realtime"
	"github.com/GajendraSingh33/fraud-detection-system/internal/scoring"
	"github.com/GajendraSingh33/fraud-detection-system/internal/stats"
	"github.com/GajendraSingh33/fraud-detection-system/internal/traces"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

// Transaction origins, used as metric labels.
const (
	SourceFeed    = "feed"
	SourceAnalyze = "analyze"
)

// Broadcaster pushes envelopes to subscribers. *realtime.Hub satisfies
// it; tests substitute a recorder.
type Broadcaster interface {
	Broadcast(msgType string, data any)
}

// Pipeline wires the scorer, aggregator, and hub together.
type Pipeline struct {
	scorer *scoring.Scorer
	stats  *stats.Aggregator
	hub    Broadcaster
	logger *slog.Logger
}

// New creates a pipeline.
func New(scorer *scoring.Scorer, agg *stats.Aggregator, hub Broadcaster, logger *slog.Logger) *Pipeline {
	return &Pipeline{scorer: scorer, stats: agg, hub: hub, logger: logger}
}

// Process scores one transaction, folds it into the aggregate stats,
// and publishes it plus a fresh stats snapshot. msgType is the
// transaction envelope type; source labels the origin in metrics.
//
// On scoring failure nothing is recorded or broadcast.
func (p *Pipeline) Process(ctx context.Context, tx transaction.Transaction, msgType, source string) (scoring.ScoredTransaction, error) {
	_, span := traces.StartSpan(ctx, "pipeline.process",
		traces.TransactionID(tx.ID),
		traces.Source(source),
	)
	defer span.End()

	start := time.Now()
	res, err := p.scorer.Score(tx)
	metrics.ScoreDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("scoring failed", "transaction_id", tx.ID, "error", err)
		return scoring.ScoredTransaction{}, err
	}
	span.SetAttributes(traces.RiskStatus(res.Status), traces.FraudProbability(res.FraudProbability))

	st := scoring.NewScoredTransaction(tx, res)
	p.stats.Record(st)
	metrics.TransactionsScoredTotal.WithLabelValues(res.Status).Inc()
	metrics.TransactionsSourceTotal.WithLabelValues(source).Inc()

	p.hub.Broadcast(msgType, st)
	p.hub.Broadcast(realtime.MessageStats, p.stats.Snapshot())

	p.logger.Info("transaction scored",
		"transaction_id", tx.ID,
		"source", source,
		"status", res.Status,
		"fraud_probability", res.FraudProbability,
	)
	return st, nil
}

// Replay builds the catch-up messages for a new subscriber: the stats
// snapshot first, then recent transactions newest-first.
func (p *Pipeline) Replay() []realtime.Envelope {
	recent := p.stats.Recent()
	out := make([]realtime.Envelope, 0, len(recent)+1)
	out = append(out, realtime.Envelope{Type: realtime.MessageStats, Data: p.stats.Snapshot()})
	for _, st := range recent {
		out = append(out, realtime.Envelope{Type: realtime.MessageRealtimeTransaction, Data: st})
	}
	return out
}
