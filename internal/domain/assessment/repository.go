package assessment

import "context"

// Repository persists assessments. Implemented by the PostgreSQL layer;
// a nil repository means history is disabled.
type Repository interface {
	// Save stores one assessment.
	Save(ctx context.Context, a *Assessment) error

	// ListRecent returns the most recent assessments, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Assessment, error)
}
