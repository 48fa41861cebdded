// Package service contains adapters that sit between the application layer
// and infrastructure implementations.
package service

import (
	"context"

	"github.com/studypulse/performance-hub/internal/domain/assessment"
	"github.com/studypulse/performance-hub/pkg/circuitbreaker"
	"github.com/studypulse/performance-hub/pkg/logger"
)

// GuardedHistoryRepository wraps an assessment repository with a circuit
// breaker. History writes happen on every prediction; when PostgreSQL is
// down the breaker fails them fast instead of stalling each request on a
// connection timeout.
type GuardedHistoryRepository struct {
	inner   assessment.Repository
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedHistoryRepository wraps repo with a history-store breaker.
func NewGuardedHistoryRepository(repo assessment.Repository, log *logger.Logger) *GuardedHistoryRepository {
	if log == nil {
		log = logger.Default()
	}

	breaker := circuitbreaker.HistoryStoreBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state change",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	return &GuardedHistoryRepository{inner: repo, breaker: breaker}
}

// Save stores one assessment through the breaker.
func (g *GuardedHistoryRepository) Save(ctx context.Context, a *assessment.Assessment) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.inner.Save(ctx, a)
	})
}

// ListRecent reads recent assessments through the breaker.
func (g *GuardedHistoryRepository) ListRecent(ctx context.Context, limit int) ([]*assessment.Assessment, error) {
	var result []*assessment.Assessment
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = g.inner.ListRecent(ctx, limit)
		return innerErr
	})
	return result, err
}
