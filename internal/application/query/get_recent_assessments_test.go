package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypulse/performance-hub/internal/domain/assessment"
	"github.com/studypulse/performance-hub/internal/domain/metrics"
	"github.com/studypulse/performance-hub/internal/domain/shared"
)

type stubRepo struct {
	items []*assessment.Assessment
}

func (s *stubRepo) Save(_ context.Context, a *assessment.Assessment) error {
	s.items = append(s.items, a)
	return nil
}

func (s *stubRepo) ListRecent(_ context.Context, limit int) ([]*assessment.Assessment, error) {
	if limit > len(s.items) {
		limit = len(s.items)
	}
	return s.items[:limit], nil
}

func TestGetRecentAssessments(t *testing.T) {
	repo := &stubRepo{}
	for i := 0; i < 3; i++ {
		repo.items = append(repo.items, &assessment.Assessment{
			ID:        "id-" + string(rune('a'+i)),
			Record:    metrics.Record{StudyTimeMin: 100, AttendancePercent: 80},
			Label:     "Average",
			Tips:      []string{"tip"},
			CreatedAt: time.Now().UTC(),
		})
	}

	h := NewGetRecentAssessmentsHandler(repo, nil)
	result, err := h.Handle(context.Background(), GetRecentAssessmentsQuery{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "id-a", result.Assessments[0].ID)
	assert.Equal(t, "Average", result.Assessments[0].Label)
	assert.Equal(t, 100.0, result.Assessments[0].Metrics.StudyTimeMin)
}

func TestGetRecentAssessments_DefaultAndMaxLimit(t *testing.T) {
	q := GetRecentAssessmentsQuery{}
	require.NoError(t, q.Validate())
	assert.Equal(t, 20, q.Limit)

	q = GetRecentAssessmentsQuery{Limit: 500}
	require.NoError(t, q.Validate())
	assert.Equal(t, 100, q.Limit)
}

func TestGetRecentAssessments_NegativeLimit(t *testing.T) {
	h := NewGetRecentAssessmentsHandler(&stubRepo{}, nil)
	_, err := h.Handle(context.Background(), GetRecentAssessmentsQuery{Limit: -1})
	require.Error(t, err)
	assert.True(t, shared.IsInvalidValue(err))
}

func TestGetRecentAssessments_HistoryDisabled(t *testing.T) {
	h := NewGetRecentAssessmentsHandler(nil, nil)
	_, err := h.Handle(context.Background(), GetRecentAssessmentsQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}
