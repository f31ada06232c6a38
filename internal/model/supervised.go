package model

import (
	"math"
	"sort"

	"github.com/GajendraSingh33/fraud-detection-system/internal/features"
)

// bandQuantiles split log-amounts into six bands with known fraud rates.
var bandQuantiles = []float64{0.10, 0.25, 0.50, 0.75, 0.90}

// Supervised estimates fraud probability from labeled history.
// Each categorical ordinal and each amount band carries a
// Laplace-smoothed empirical fraud rate; the score is the weighted
// mean of the rates the transaction falls into.
type Supervised struct {
	bandBounds []float64
	bandRates  []float64
	dimRates   map[int]map[int]float64
}

// FitSupervised trains a supervised model on feature vectors and their
// fraud labels. Vectors and labels are parallel slices.
func FitSupervised(vectors []features.Vector, labels []bool) *Supervised {
	s := &Supervised{
		dimRates: make(map[int]map[int]float64, len(categoricalIdxs)),
	}

	logAmounts := make([]float64, len(vectors))
	for i, v := range vectors {
		logAmounts[i] = v[features.IdxLogAmount]
	}
	s.bandBounds = quantiles(logAmounts, bandQuantiles)

	bandFraud := make([]int, len(s.bandBounds)+1)
	bandTotal := make([]int, len(s.bandBounds)+1)
	dimFraud := make(map[int]map[int]int, len(categoricalIdxs))
	dimTotal := make(map[int]map[int]int, len(categoricalIdxs))
	for _, idx := range categoricalIdxs {
		dimFraud[idx] = make(map[int]int)
		dimTotal[idx] = make(map[int]int)
	}

	for i, v := range vectors {
		b := s.band(v[features.IdxLogAmount])
		bandTotal[b]++
		if labels[i] {
			bandFraud[b]++
		}
		for _, idx := range categoricalIdxs {
			ord := int(v[idx])
			dimTotal[idx][ord]++
			if labels[i] {
				dimFraud[idx][ord]++
			}
		}
	}

	s.bandRates = make([]float64, len(bandTotal))
	for b := range bandTotal {
		s.bandRates[b] = laplaceRate(bandFraud[b], bandTotal[b])
	}
	for _, idx := range categoricalIdxs {
		rates := make(map[int]float64, len(dimTotal[idx]))
		for ord, total := range dimTotal[idx] {
			rates[ord] = laplaceRate(dimFraud[idx][ord], total)
		}
		s.dimRates[idx] = rates
	}

	return s
}

// Score returns the weighted fraud rate for the vector's bands and
// ordinals. Ordinals never seen in training score the smoothing prior.
func (s *Supervised) Score(v features.Vector) float64 {
	score := weightAmount * s.bandRates[s.band(v[features.IdxLogAmount])]
	for _, idx := range categoricalIdxs {
		score += categoricalWeight(idx) * s.dimRate(idx, int(v[idx]))
	}
	return clamp01(score)
}

func (s *Supervised) dimRate(idx, ord int) float64 {
	if r, ok := s.dimRates[idx][ord]; ok {
		return r
	}
	return laplaceRate(0, 0)
}

// band returns the amount band index for a log-amount: the number of
// quantile boundaries at or below it.
func (s *Supervised) band(logAmount float64) int {
	b := 0
	for _, bound := range s.bandBounds {
		if logAmount >= bound {
			b++
		}
	}
	return b
}

// laplaceRate is the add-one smoothed fraud rate; zero observations
// yield the 0.5 prior.
func laplaceRate(fraud, total int) float64 {
	return float64(fraud+1) / float64(total+2)
}

// quantiles returns the values at the given fractions of the sorted data.
func quantiles(data []float64, fractions []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	out := make([]float64, len(fractions))
	for i, f := range fractions {
		if len(sorted) == 0 {
			continue
		}
		pos := int(math.Ceil(f*float64(len(sorted)))) - 1
		if pos < 0 {
			pos = 0
		}
		if pos >= len(sorted) {
			pos = len(sorted) - 1
		}
		out[i] = sorted[pos]
	}
	return out
}
