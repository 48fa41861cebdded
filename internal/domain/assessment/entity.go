// Package assessment contains the domain model for a completed performance
// assessment: one prediction plus the tips it produced, kept for history.
package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/studypulse/performance-hub/internal/domain/metrics"
	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// Assessment is one prediction outcome recorded for history.
type Assessment struct {
	// ID is the assessment's unique identifier.
	ID string

	// Record holds the metrics the prediction was made from.
	Record metrics.Record

	// Label is the predicted performance label.
	Label string

	// Tips are the advisory strings generated for this assessment.
	Tips []string

	// CreatedAt is when the assessment was made.
	CreatedAt time.Time
}

// New creates an Assessment for the given prediction outcome.
func New(rec metrics.Record, label string, tips []string) *Assessment {
	return &Assessment{
		ID:        uuid.New().String(),
		Record:    rec,
		Label:     label,
		Tips:      tips,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the assessment invariants.
func (a *Assessment) Validate() error {
	if a.ID == "" {
		return shared.NewDomainError("assessment", "Validate", shared.ErrInvalidValue, "empty assessment ID")
	}
	if a.Label == "" {
		return shared.NewDomainError("assessment", "Validate", shared.ErrInvalidValue, "empty label")
	}
	return nil
}
