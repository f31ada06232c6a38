// Package scoring combines the supervised and anomaly models into a
// single fraud-probability ensemble with hot-swappable retraining.
package scoring

import (
	"time"

	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

// Risk tiers assigned from the ensemble probability.
const (
	StatusSafe       = "safe"
	StatusSuspicious = "suspicious"
	StatusFraud      = "fraud"
	StatusError      = "error"
)

// Tier boundaries on the rounded fraud probability.
const (
	suspiciousThreshold = 0.5
	fraudThreshold      = 0.8
)

// ScoreResult is the ensemble verdict for one transaction.
// RiskScore restates FraudProbability for display consumers.
type ScoreResult struct {
	FraudProbability float64 `json:"fraud_probability"`
	MLConfidence     float64 `json:"ml_confidence"`
	RiskScore        float64 `json:"risk_score"`
	Status           string  `json:"status"`
	Message          string  `json:"message,omitempty"`
}

// ScoredTransaction joins a transaction with its verdict. The embedded
// fields flatten into one JSON object, which is the wire shape pushed
// to subscribers and returned from analysis calls.
type ScoredTransaction struct {
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	MerchantType  string    `json:"merchant_type"`
	Location      string    `json:"location"`
	TimeOfDay     string    `json:"time_of_day"`
	CardType      string    `json:"card_type"`
	Timestamp     time.Time `json:"timestamp"`
	ScoreResult
}

// NewScoredTransaction pairs a transaction with its score result.
func NewScoredTransaction(tx transaction.Transaction, res ScoreResult) ScoredTransaction {
	return ScoredTransaction{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		MerchantType:  tx.MerchantType,
		Location:      tx.Location,
		TimeOfDay:     tx.TimeOfDay,
		CardType:      tx.CardType,
		Timestamp:     tx.Timestamp,
		ScoreResult:   res,
	}
}

// statusFor maps a rounded probability to its risk tier.
func statusFor(p float64) string {
	switch {
	case p >= fraudThreshold:
		return StatusFraud
	case p >= suspiciousThreshold:
		return StatusSuspicious
	default:
		return StatusSafe
	}
}

// Quality holds holdout evaluation metrics from the most recent
// successful training run.
type Quality struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// Metadata describes the serving model set.
type Metadata struct {
	Trained    bool      `json:"trained"`
	TrainedAt  time.Time `json:"trained_at,omitzero"`
	Samples    int       `json:"training_samples"`
	Supervised float64   `json:"supervised_weight"`
	Anomaly    float64   `json:"anomaly_weight"`
	Quality    *Quality  `json:"quality,omitempty"`
}
