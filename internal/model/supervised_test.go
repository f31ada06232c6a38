package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GajendraSingh33/fraud-detection-system/internal/features"
)

func vec(logAmount, amountZ float64, merchant, location, period, card int) features.Vector {
	v := make(features.Vector, features.VectorLen)
	v[features.IdxLogAmount] = logAmount
	v[features.IdxAmountZ] = amountZ
	v[features.IdxMerchant] = float64(merchant)
	v[features.IdxLocation] = float64(location)
	v[features.IdxTimeOfDay] = float64(period)
	v[features.IdxCardType] = float64(card)
	return v
}

// corpus: 8 legit transactions on ordinal 0 everywhere, 2 fraud on
// ordinal 1 everywhere, all with the same amount.
func fixtureCorpus() ([]features.Vector, []bool) {
	var vectors []features.Vector
	var labels []bool
	for i := 0; i < 8; i++ {
		vectors = append(vectors, vec(1.0, 0, 0, 0, 0, 0))
		labels = append(labels, false)
	}
	for i := 0; i < 2; i++ {
		vectors = append(vectors, vec(1.0, 0, 1, 1, 1, 1))
		labels = append(labels, true)
	}
	return vectors, labels
}

func TestSupervisedScoreKnownRates(t *testing.T) {
	vectors, labels := fixtureCorpus()
	s := FitSupervised(vectors, labels)

	// All amounts identical, so every vector shares one band with
	// rate (2+1)/(10+2). Legit ordinals rate (0+1)/(8+2), fraud
	// ordinals (2+1)/(2+2).
	legit := s.Score(vec(1.0, 0, 0, 0, 0, 0))
	fraud := s.Score(vec(1.0, 0, 1, 1, 1, 1))

	assert.InDelta(t, 0.30*0.25+0.70*0.10, legit, 1e-9)
	assert.InDelta(t, 0.30*0.25+0.70*0.75, fraud, 1e-9)
}

func TestSupervisedUnseenOrdinalScoresPrior(t *testing.T) {
	vectors, labels := fixtureCorpus()
	s := FitSupervised(vectors, labels)

	// Never-seen ordinals fall back to the 0.5 smoothing prior.
	got := s.Score(vec(1.0, 0, 99, 99, 99, 99))
	assert.InDelta(t, 0.30*0.25+0.70*0.5, got, 1e-9)
}

func TestSupervisedScoreBounds(t *testing.T) {
	vectors, labels := fixtureCorpus()
	s := FitSupervised(vectors, labels)

	for _, v := range []features.Vector{
		vec(0, -10, 0, 0, 0, 0),
		vec(15, 10, 1, 1, 1, 1),
		vec(5, 0, 99, 0, 1, 99),
	} {
		got := s.Score(v)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestSupervisedAmountBands(t *testing.T) {
	// Amounts split across two clusters; high-amount cluster is fraud.
	var vectors []features.Vector
	var labels []bool
	for i := 0; i < 40; i++ {
		vectors = append(vectors, vec(3.0, 0, 0, 0, 0, 0))
		labels = append(labels, false)
	}
	for i := 0; i < 10; i++ {
		vectors = append(vectors, vec(9.0, 0, 0, 0, 0, 0))
		labels = append(labels, true)
	}
	s := FitSupervised(vectors, labels)

	low := s.Score(vec(3.0, 0, 0, 0, 0, 0))
	high := s.Score(vec(9.0, 0, 0, 0, 0, 0))
	assert.Greater(t, high, low)
}

func TestQuantilesEmptyAndSingle(t *testing.T) {
	assert.Equal(t, []float64{0, 0}, quantiles(nil, []float64{0.25, 0.75}))
	assert.Equal(t, []float64{5, 5}, quantiles([]float64{5}, []float64{0.25, 0.75}))
}
