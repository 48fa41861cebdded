// Package command contains write operations following CQRS pattern.
// Each command is a self-contained use case with its own request/response
// types: assessing a student and retraining the model both mutate state
// (history rows, the published model) and live here.
package command

import (
	"context"
	"time"

	"github.com/studypulse/performance-hub/internal/domain/advice"
	"github.com/studypulse/performance-hub/internal/domain/assessment"
	"github.com/studypulse/performance-hub/internal/domain/metrics"
	"github.com/studypulse/performance-hub/internal/ml"
	"github.com/studypulse/performance-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESS STUDENT COMMAND
// Turns one raw metric submission into a predicted label plus tips, and
// records the outcome as an assessment when history is enabled.
// ══════════════════════════════════════════════════════════════════════════════

// AssessStudentCommand carries the raw metric fields of one submission.
// Values are the free-text strings the interface layer received; parsing
// and validation happen inside the handler.
type AssessStudentCommand struct {
	// Metrics maps metric field names to their raw string values.
	Metrics map[string]string
}

// AssessmentDTO is the outcome of one assessment.
type AssessmentDTO struct {
	// ID is the recorded assessment's identifier (empty if history is off).
	ID string `json:"id,omitempty"`

	// Label is the predicted performance label.
	Label string `json:"label"`

	// Tips are the advisory strings, highest priority first.
	Tips []string `json:"tips"`

	// Cached reports whether the outcome came from the prediction cache.
	Cached bool `json:"cached"`

	// CreatedAt is when the assessment was made.
	CreatedAt time.Time `json:"created_at"`
}

// PredictionCache caches prediction outcomes keyed by feature vector.
// Implemented by the Redis layer; nil disables caching.
type PredictionCache interface {
	Get(ctx context.Context, fv metrics.FeatureVector) (label string, tips []string, ok bool)
	Put(ctx context.Context, fv metrics.FeatureVector, label string, tips []string) error
}

// AssessStudentHandler handles student assessment commands.
type AssessStudentHandler struct {
	predictor *ml.Predictor
	engine    *advice.Engine
	cache     PredictionCache
	repo      assessment.Repository
	logger    *logger.Logger
}

// NewAssessStudentHandler creates the handler. Cache and repo may be nil;
// the corresponding steps are skipped.
func NewAssessStudentHandler(
	predictor *ml.Predictor,
	engine *advice.Engine,
	cache PredictionCache,
	repo assessment.Repository,
	log *logger.Logger,
) *AssessStudentHandler {
	if log == nil {
		log = logger.Default()
	}
	return &AssessStudentHandler{
		predictor: predictor,
		engine:    engine,
		cache:     cache,
		repo:      repo,
		logger:    log,
	}
}

// Handle executes the assessment use case.
// Parse and prediction errors propagate to the caller carrying their domain
// kind; history and cache failures are logged but never fail the request.
func (h *AssessStudentHandler) Handle(ctx context.Context, cmd AssessStudentCommand) (*AssessmentDTO, error) {
	rec, err := metrics.ParseRecord(cmd.Metrics)
	if err != nil {
		return nil, err
	}

	fv := rec.Features()

	var (
		label  string
		tips   []string
		cached bool
	)

	if h.cache != nil {
		label, tips, cached = h.cache.Get(ctx, fv)
	}

	if !cached {
		label, err = h.predictor.Predict(fv)
		if err != nil {
			return nil, err
		}

		tips = h.engine.Generate(label, rec)

		if h.cache != nil {
			if err := h.cache.Put(ctx, fv, label, tips); err != nil {
				h.logger.Warn("prediction cache write failed", logger.Err(err))
			}
		}
	}

	dto := &AssessmentDTO{
		Label:     label,
		Tips:      tips,
		Cached:    cached,
		CreatedAt: time.Now().UTC(),
	}

	if h.repo != nil {
		a := assessment.New(rec, label, tips)
		if err := h.repo.Save(ctx, a); err != nil {
			h.logger.Error("failed to record assessment", logger.Err(err), logger.AssessmentID(a.ID))
		} else {
			dto.ID = a.ID
			dto.CreatedAt = a.CreatedAt
		}
	}

	h.logger.Info("assessment completed",
		logger.Label(label),
		logger.TipCount(len(dto.Tips)),
		logger.Bool("cached", cached),
	)

	return dto, nil
}
