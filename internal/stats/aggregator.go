// Package stats aggregates running totals over scored transactions and
// keeps a bounded history of recent ones for subscriber replay.
package stats

import (
	"sync"

	"github.com/GajendraSingh33/fraud-detection-system/internal/scoring"
)

// historyCap bounds the recent-transaction buffer.
const historyCap = 100

// Snapshot is a point-in-time view of the aggregate counters.
// Model metrics are nil until the first successful training run.
type Snapshot struct {
	TotalTransactions      int64    `json:"total_transactions"`
	SafeTransactions       int64    `json:"safe_transactions"`
	SuspiciousTransactions int64    `json:"suspicious_transactions"`
	FraudTransactions      int64    `json:"fraud_transactions"`
	TotalAmountProcessed   float64  `json:"total_amount_processed"`
	ModelAccuracy          *float64 `json:"model_accuracy,omitempty"`
	ModelPrecision         *float64 `json:"model_precision,omitempty"`
	ModelRecall            *float64 `json:"model_recall,omitempty"`
}

// Aggregator accumulates counters and recent history. Safe for
// concurrent use.
type Aggregator struct {
	mu         sync.Mutex
	total      int64
	safe       int64
	suspicious int64
	fraud      int64
	amount     float64
	quality    *scoring.Quality
	recent     []scoring.ScoredTransaction
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Record folds one scored transaction into the counters and history.
// Error-status results must be rejected upstream; they never reach here.
func (a *Aggregator) Record(st scoring.ScoredTransaction) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.amount += st.Amount
	switch st.Status {
	case scoring.StatusSafe:
		a.safe++
	case scoring.StatusSuspicious:
		a.suspicious++
	case scoring.StatusFraud:
		a.fraud++
	}

	// newest first
	a.recent = append([]scoring.ScoredTransaction{st}, a.recent...)
	if len(a.recent) > historyCap {
		a.recent = a.recent[:historyCap]
	}
}

// SetModelQuality records holdout metrics from a successful retrain.
func (a *Aggregator) SetModelQuality(q scoring.Quality) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := q
	a.quality = &cp
}

// Snapshot returns the current counters.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Snapshot{
		TotalTransactions:      a.total,
		SafeTransactions:       a.safe,
		SuspiciousTransactions: a.suspicious,
		FraudTransactions:      a.fraud,
		TotalAmountProcessed:   a.amount,
	}
	if a.quality != nil {
		acc, prec, rec := a.quality.Accuracy, a.quality.Precision, a.quality.Recall
		s.ModelAccuracy = &acc
		s.ModelPrecision = &prec
		s.ModelRecall = &rec
	}
	return s
}

// Recent returns up to historyCap scored transactions, newest first.
func (a *Aggregator) Recent() []scoring.ScoredTransaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]scoring.ScoredTransaction, len(a.recent))
	copy(out, a.recent)
	return out
}
