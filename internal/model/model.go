// Package model implements the two fraud models behind the ensemble:
// a label-trained supervised model and an unsupervised anomaly model.
// Both score feature vectors to a probability-like value in [0, 1].
package model

import "github.com/GajendraSingh33/fraud-detection-system/internal/features"

// Model scores a feature vector to a fraud likelihood in [0, 1].
// Implementations are immutable after fitting and safe for concurrent use.
type Model interface {
	Score(v features.Vector) float64
}

// Relative weight of each signal inside a single model's score.
// The amount signal dominates; categorical signals split the rest.
const (
	weightAmount   = 0.30
	weightMerchant = 0.20
	weightLocation = 0.20
	weightTime     = 0.15
	weightCard     = 0.15
)

// categoricalIdxs are the vector positions both models treat as ordinals.
var categoricalIdxs = []int{
	features.IdxMerchant,
	features.IdxLocation,
	features.IdxTimeOfDay,
	features.IdxCardType,
}

func categoricalWeight(idx int) float64 {
	switch idx {
	case features.IdxMerchant:
		return weightMerchant
	case features.IdxLocation:
		return weightLocation
	case features.IdxTimeOfDay:
		return weightTime
	case features.IdxCardType:
		return weightCard
	default:
		return 0
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
