package ml

import (
	"fmt"
	"sync/atomic"

	"github.com/studypulse/performance-hub/internal/domain/metrics"
	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// Predictor applies the trained model to feature vectors. The (classifier,
// codec) pair lives behind an atomic pointer: readers never lock, and
// retraining publishes a whole new Model in one swap - the artifact in use
// is never mutated.
type Predictor struct {
	model atomic.Pointer[Model]
}

// NewPredictor creates an unfitted Predictor. Predict fails until a model
// is published via Swap.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// NewFittedPredictor creates a Predictor already serving the given model.
func NewFittedPredictor(m *Model) *Predictor {
	p := &Predictor{}
	p.model.Store(m)
	return p
}

// Swap atomically replaces the served model. Subsequent Predict calls see
// the new model; in-flight calls finish against the old one.
func (p *Predictor) Swap(m *Model) {
	p.model.Store(m)
}

// Ready reports whether a trained model is available.
func (p *Predictor) Ready() bool {
	return p.model.Load() != nil
}

// Current returns the served model, or nil before training completes.
func (p *Predictor) Current() *Model {
	return p.model.Load()
}

// Predict classifies one feature vector and decodes the result to a label
// string. Deterministic: the same vector against the same model always
// returns the same label.
//
// Fails with an UnfittedModelError kind when no model has been published
// yet - unreachable given the startup ordering, but an explicit failure
// beats undefined behavior.
func (p *Predictor) Predict(fv metrics.FeatureVector) (string, error) {
	m := p.model.Load()
	if m == nil {
		return "", shared.NewDomainError("ml", "Predict", shared.ErrUnfittedModel,
			"inference attempted before training completed")
	}

	if len(fv) != m.forest.NumFeatures() {
		return "", shared.NewDomainError("ml", "Predict", shared.ErrInvalidValue,
			fmt.Sprintf("feature vector has %d columns, model expects %d",
				len(fv), m.forest.NumFeatures()))
	}

	code := m.forest.Predict(fv)
	return m.codec.Decode(code)
}
