package model

import (
	"math"

	"github.com/GajendraSingh33/fraud-detection-system/internal/features"
)

// Anomaly flags transactions that look unlike the training population.
// It never sees fraud labels: each categorical value scores by its
// rarity relative to the most common value of its dimension, and the
// amount scores by how far its log deviates from the population mean.
type Anomaly struct {
	freq    map[int]map[int]int
	maxFreq map[int]int
}

// FitAnomaly trains an anomaly model from unlabeled feature vectors.
func FitAnomaly(vectors []features.Vector) *Anomaly {
	a := &Anomaly{
		freq:    make(map[int]map[int]int, len(categoricalIdxs)),
		maxFreq: make(map[int]int, len(categoricalIdxs)),
	}
	for _, idx := range categoricalIdxs {
		a.freq[idx] = make(map[int]int)
	}

	for _, v := range vectors {
		for _, idx := range categoricalIdxs {
			ord := int(v[idx])
			a.freq[idx][ord]++
			if a.freq[idx][ord] > a.maxFreq[idx] {
				a.maxFreq[idx] = a.freq[idx][ord]
			}
		}
	}

	return a
}

// Score returns the weighted anomaly of the vector. Ordinals absent
// from training are maximally anomalous.
func (a *Anomaly) Score(v features.Vector) float64 {
	score := weightAmount * amountSurprise(v[features.IdxAmountZ])
	for _, idx := range categoricalIdxs {
		score += categoricalWeight(idx) * a.rarity(idx, int(v[idx]))
	}
	return clamp01(score)
}

// rarity is 1 for never-seen values, 0 for the modal value, and scales
// linearly with frequency in between.
func (a *Anomaly) rarity(idx, ord int) float64 {
	count, ok := a.freq[idx][ord]
	if !ok || a.maxFreq[idx] == 0 {
		return 1
	}
	return 1 - float64(count)/float64(a.maxFreq[idx])
}

// amountSurprise maps a log-amount z-score to [0, 1); typical amounts
// score near zero, extreme amounts approach one.
func amountSurprise(z float64) float64 {
	return 1 - math.Exp(-math.Abs(z))
}
