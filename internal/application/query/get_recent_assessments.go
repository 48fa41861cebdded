// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/studypulse/performance-hub/internal/domain/assessment"
	"github.com/studypulse/performance-hub/internal/domain/shared"
	"github.com/studypulse/performance-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECENT ASSESSMENTS QUERY
// Returns the most recently recorded assessments, newest first.
// ══════════════════════════════════════════════════════════════════════════════

// GetRecentAssessmentsQuery holds the query parameters.
type GetRecentAssessmentsQuery struct {
	// Limit is the number of assessments to return (default 20, max 100).
	Limit int
}

// Validate normalizes and checks the query parameters.
func (q *GetRecentAssessmentsQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// MetricsDTO is the stored metric snapshot of an assessment.
type MetricsDTO struct {
	StudyTimeMin      float64 `json:"study_time_min"`
	ScreenTimeMin     float64 `json:"total_screen_time_min"`
	SleepHours        float64 `json:"sleep_hours"`
	AttendancePercent float64 `json:"class_attendance_percent"`
	PhysicalActivity  bool    `json:"physical_activity"`
	RevisionTimeMin   float64 `json:"weekly_revision_time_min"`
	DistractingApps   int     `json:"distracting_app_count"`
	EduYouTubeMin     float64 `json:"daily_youtube_edu_min"`
	AcademicGoal      bool    `json:"academic_goal"`
}

// RecentAssessmentDTO is one historical assessment.
type RecentAssessmentDTO struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Tips      []string   `json:"tips"`
	Metrics   MetricsDTO `json:"metrics"`
	CreatedAt time.Time  `json:"created_at"`
}

// GetRecentAssessmentsResult is the query result.
type GetRecentAssessmentsResult struct {
	Assessments []RecentAssessmentDTO `json:"assessments"`
	Count       int                   `json:"count"`
}

// GetRecentAssessmentsHandler handles recent-assessment queries.
type GetRecentAssessmentsHandler struct {
	repo   assessment.Repository
	logger *logger.Logger
}

// NewGetRecentAssessmentsHandler creates the handler. Repo may be nil when
// history is disabled; the handler then reports service unavailable.
func NewGetRecentAssessmentsHandler(repo assessment.Repository, log *logger.Logger) *GetRecentAssessmentsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetRecentAssessmentsHandler{repo: repo, logger: log}
}

// Handle executes the query.
func (h *GetRecentAssessmentsHandler) Handle(ctx context.Context, q GetRecentAssessmentsQuery) (*GetRecentAssessmentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.NewDomainError("assessment", "GetRecentAssessments", shared.ErrInvalidValue, err.Error())
	}

	if h.repo == nil {
		return nil, shared.NewDomainError("assessment", "GetRecentAssessments", shared.ErrServiceUnavailable,
			"assessment history is disabled")
	}

	items, err := h.repo.ListRecent(ctx, q.Limit)
	if err != nil {
		h.logger.Error("failed to list recent assessments", logger.Err(err))
		return nil, err
	}

	result := &GetRecentAssessmentsResult{
		Assessments: make([]RecentAssessmentDTO, 0, len(items)),
	}
	for _, a := range items {
		result.Assessments = append(result.Assessments, RecentAssessmentDTO{
			ID:    a.ID,
			Label: a.Label,
			Tips:  a.Tips,
			Metrics: MetricsDTO{
				StudyTimeMin:      a.Record.StudyTimeMin,
				ScreenTimeMin:     a.Record.ScreenTimeMin,
				SleepHours:        a.Record.SleepHours,
				AttendancePercent: a.Record.AttendancePercent,
				PhysicalActivity:  a.Record.PhysicalActivity,
				RevisionTimeMin:   a.Record.RevisionTimeMin,
				DistractingApps:   a.Record.DistractingApps,
				EduYouTubeMin:     a.Record.EduYouTubeMin,
				AcademicGoal:      a.Record.AcademicGoal,
			},
			CreatedAt: a.CreatedAt,
		})
	}
	result.Count = len(result.Assessments)

	return result, nil
}
