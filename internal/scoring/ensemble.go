package scoring

import (
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/GajendraSingh33/fraud-detection-system/internal/features"
	"github.com/GajendraSingh33/fraud-detection-system/internal/model"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

var (
	// ErrModelNotTrained is returned when scoring is requested before
	// the first successful training run.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrInsufficientData is returned when a training corpus is too
	// small or lacks both classes.
	ErrInsufficientData = errors.New("insufficient training data")
)

// minTrainingSamples is the smallest corpus Retrain accepts.
const minTrainingSamples = 50

// modelSet is one immutable generation of trained models. Scoring
// reads the whole set through a single pointer so a retrain can never
// mix generations within one transaction.
type modelSet struct {
	encoder    *features.Encoder
	supervised model.Model
	anomaly    model.Model
	quality    Quality
	trainedAt  time.Time
	samples    int
}

// Scorer blends the supervised and anomaly models into one fraud
// probability. Safe for concurrent Score and Retrain.
type Scorer struct {
	supervisedWeight float64
	anomalyWeight    float64
	serving          atomic.Pointer[modelSet]
}

// New creates an untrained scorer. supervisedWeight must be in [0, 1];
// the anomaly model gets the complement.
func New(supervisedWeight float64) *Scorer {
	return &Scorer{
		supervisedWeight: supervisedWeight,
		anomalyWeight:    1 - supervisedWeight,
	}
}

// NewWithModels creates a scorer serving the given pre-fitted models.
func NewWithModels(supervisedWeight float64, enc *features.Encoder, sup, anom model.Model) *Scorer {
	s := New(supervisedWeight)
	s.serving.Store(&modelSet{
		encoder:    enc,
		supervised: sup,
		anomaly:    anom,
		trainedAt:  time.Now().UTC(),
	})
	return s
}

// Score runs the ensemble over one transaction. Returns
// ErrModelNotTrained before the first successful training run.
func (s *Scorer) Score(tx transaction.Transaction) (ScoreResult, error) {
	ms := s.serving.Load()
	if ms == nil {
		return ScoreResult{Status: StatusError, Message: ErrModelNotTrained.Error()}, ErrModelNotTrained
	}

	v := ms.encoder.Extract(tx)
	pSup := ms.supervised.Score(v)
	pAnom := ms.anomaly.Score(v)

	p := round4(s.supervisedWeight*pSup + s.anomalyWeight*pAnom)
	conf := round4(1 - math.Abs(pSup-pAnom))

	return ScoreResult{
		FraudProbability: p,
		MLConfidence:     conf,
		RiskScore:        p,
		Status:           statusFor(p),
	}, nil
}

// Trained reports whether a model set is serving.
func (s *Scorer) Trained() bool {
	return s.serving.Load() != nil
}

// Quality returns the holdout metrics of the serving model set.
// ok is false before the first successful training run.
func (s *Scorer) Quality() (q Quality, ok bool) {
	ms := s.serving.Load()
	if ms == nil {
		return Quality{}, false
	}
	return ms.quality, true
}

// Metadata describes the serving model set for the model endpoint.
func (s *Scorer) Metadata() Metadata {
	md := Metadata{
		Supervised: s.supervisedWeight,
		Anomaly:    s.anomalyWeight,
	}
	ms := s.serving.Load()
	if ms == nil {
		return md
	}
	md.Trained = true
	md.TrainedAt = ms.trainedAt
	md.Samples = ms.samples
	q := ms.quality
	md.Quality = &q
	return md
}

// round4 rounds to 4 decimal places so tier boundaries compare exactly.
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
