// Package features converts transactions into numeric feature vectors
// shared by the supervised and anomaly models.
package features

import (
	"math"
	"time"

	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

// Vector positions. All models index vectors with these.
const (
	IdxLogAmount = iota
	IdxAmountZ
	IdxMerchant
	IdxLocation
	IdxTimeOfDay
	IdxCardType
	IdxWeekend
	IdxNight

	VectorLen
)

// Vector is a fixed-length numeric view of a transaction.
// Categorical positions hold ordinal indexes from the fitted Encoder.
type Vector []float64

// Encoder maps categorical fields to stable ordinals and amounts to
// normalized magnitudes. Fitted once per training run; read-only after.
type Encoder struct {
	merchants map[string]int
	locations map[string]int
	periods   map[string]int
	cards     map[string]int

	logAmountMean float64
	logAmountStd  float64
}

// minLogStd keeps the z-score bounded when training amounts are
// nearly constant.
const minLogStd = 0.1

// Fit builds an encoder from a training corpus. Category tables start
// from the canonical lists so known categories always get the same
// ordinal, then extend with any extra values observed in the data.
func Fit(data []transaction.Labeled) *Encoder {
	e := &Encoder{
		merchants: indexOf(transaction.MerchantTypes),
		locations: indexOf(transaction.Locations),
		periods:   indexOf(transaction.TimePeriods),
		cards:     indexOf(transaction.CardTypes),
	}

	var sum, sumSq float64
	for _, d := range data {
		tx := d.Transaction
		extend(e.merchants, transaction.NormalizeCategory(tx.MerchantType))
		extend(e.locations, tx.Location)
		extend(e.periods, transaction.NormalizeCategory(tx.TimeOfDay))
		extend(e.cards, transaction.NormalizeCategory(tx.CardType))

		la := math.Log1p(tx.Amount)
		sum += la
		sumSq += la * la
	}

	n := float64(len(data))
	if n > 0 {
		e.logAmountMean = sum / n
		variance := sumSq/n - e.logAmountMean*e.logAmountMean
		if variance > 0 {
			e.logAmountStd = math.Sqrt(variance)
		}
	}
	if e.logAmountStd < minLogStd {
		e.logAmountStd = minLogStd
	}

	return e
}

// Extract computes the feature vector for a transaction. Categories
// unseen during Fit map to the unknown bucket one past the table.
func (e *Encoder) Extract(tx transaction.Transaction) Vector {
	la := math.Log1p(tx.Amount)

	v := make(Vector, VectorLen)
	v[IdxLogAmount] = la
	v[IdxAmountZ] = (la - e.logAmountMean) / e.logAmountStd
	v[IdxMerchant] = float64(ordinal(e.merchants, transaction.NormalizeCategory(tx.MerchantType)))
	v[IdxLocation] = float64(ordinal(e.locations, tx.Location))
	v[IdxTimeOfDay] = float64(ordinal(e.periods, transaction.NormalizeCategory(tx.TimeOfDay)))
	v[IdxCardType] = float64(ordinal(e.cards, transaction.NormalizeCategory(tx.CardType)))
	v[IdxWeekend] = boolFeature(isWeekend(tx.Timestamp))
	v[IdxNight] = boolFeature(transaction.NormalizeCategory(tx.TimeOfDay) == transaction.PeriodNight)
	return v
}

// Cardinality reports the table size for a categorical vector position,
// including the unknown bucket.
func (e *Encoder) Cardinality(idx int) int {
	switch idx {
	case IdxMerchant:
		return len(e.merchants) + 1
	case IdxLocation:
		return len(e.locations) + 1
	case IdxTimeOfDay:
		return len(e.periods) + 1
	case IdxCardType:
		return len(e.cards) + 1
	default:
		return 0
	}
}

// LogAmountStats returns the fitted log-amount mean and standard deviation.
func (e *Encoder) LogAmountStats() (mean, std float64) {
	return e.logAmountMean, e.logAmountStd
}

func indexOf(values []string) map[string]int {
	m := make(map[string]int, len(values))
	for i, v := range values {
		m[v] = i
	}
	return m
}

func extend(m map[string]int, v string) {
	if _, ok := m[v]; !ok {
		m[v] = len(m)
	}
}

// ordinal returns the table index, or the unknown bucket (len) for
// values never seen during Fit.
func ordinal(m map[string]int, v string) int {
	if i, ok := m[v]; ok {
		return i
	}
	return len(m)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
