package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/GajendraSingh33/fraud-detection-system/internal/features"
	"github.com/GajendraSingh33/fraud-detection-system/internal/model"
	"github.com/GajendraSingh33/fraud-detection-system/internal/traces"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

// holdoutFraction of the corpus is withheld from training and used to
// evaluate the new ensemble before it starts serving.
const holdoutFraction = 0.2

// Retrain fits a fresh model set on the labeled corpus and swaps it in
// atomically. The serving set is untouched on any error, so scoring
// continues on the previous generation.
//
// Requires at least minTrainingSamples examples including both classes.
func (s *Scorer) Retrain(ctx context.Context, data []transaction.Labeled) (Quality, error) {
	_, span := traces.StartSpan(ctx, "scoring.retrain", traces.SampleCount(len(data)))
	defer span.End()

	if err := validateCorpus(data); err != nil {
		return Quality{}, err
	}

	holdout := int(float64(len(data)) * holdoutFraction)
	train, eval := data[:len(data)-holdout], data[len(data)-holdout:]

	enc := features.Fit(train)
	vectors := make([]features.Vector, len(train))
	labels := make([]bool, len(train))
	for i, d := range train {
		vectors[i] = enc.Extract(d.Transaction)
		labels[i] = d.Fraud
	}

	// The anomaly model trains on the same vectors but never sees labels.
	sup := model.FitSupervised(vectors, labels)
	anom := model.FitAnomaly(vectors)

	candidate := &Scorer{
		supervisedWeight: s.supervisedWeight,
		anomalyWeight:    s.anomalyWeight,
	}
	candidate.serving.Store(&modelSet{encoder: enc, supervised: sup, anomaly: anom})

	quality := evaluate(candidate, eval)

	s.serving.Store(&modelSet{
		encoder:    enc,
		supervised: sup,
		anomaly:    anom,
		quality:    quality,
		trainedAt:  time.Now().UTC(),
		samples:    len(data),
	})

	return quality, nil
}

func validateCorpus(data []transaction.Labeled) error {
	if len(data) < minTrainingSamples {
		return fmt.Errorf("%w: got %d samples, need %d", ErrInsufficientData, len(data), minTrainingSamples)
	}
	var fraud, legit bool
	for _, d := range data {
		if d.Fraud {
			fraud = true
		} else {
			legit = true
		}
		if fraud && legit {
			return nil
		}
	}
	return fmt.Errorf("%w: corpus must contain both fraud and legitimate examples", ErrInsufficientData)
}

// evaluate scores the holdout set, predicting fraud at probability 0.5.
func evaluate(sc *Scorer, holdout []transaction.Labeled) Quality {
	var tp, tn, fp, fn int
	for _, d := range holdout {
		res, err := sc.Score(d.Transaction)
		if err != nil {
			continue
		}
		predicted := res.FraudProbability >= suspiciousThreshold
		switch {
		case predicted && d.Fraud:
			tp++
		case predicted && !d.Fraud:
			fp++
		case !predicted && d.Fraud:
			fn++
		default:
			tn++
		}
	}

	q := Quality{}
	if total := tp + tn + fp + fn; total > 0 {
		q.Accuracy = round4(float64(tp+tn) / float64(total))
	}
	if tp+fp > 0 {
		q.Precision = round4(float64(tp) / float64(tp+fp))
	}
	if tp+fn > 0 {
		q.Recall = round4(float64(tp) / float64(tp+fn))
	}
	return q
}
