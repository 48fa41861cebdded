package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/studypulse/performance-hub/internal/domain/assessment"
	"github.com/studypulse/performance-hub/internal/domain/metrics"
	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// AssessmentRepository implements assessment.Repository backed by PostgreSQL.
type AssessmentRepository struct {
	conn *Connection
}

// NewAssessmentRepository creates a PostgreSQL-backed assessment repository.
func NewAssessmentRepository(conn *Connection) *AssessmentRepository {
	return &AssessmentRepository{conn: conn}
}

// recordDoc is the JSONB shape of a metrics record. Kept separate from the
// domain type so schema changes stay a storage concern.
type recordDoc struct {
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

func toDoc(r metrics.Record) recordDoc {
	return recordDoc{
		StudyTimeMin:      r.StudyTimeMin,
		ScreenTimeMin:     r.ScreenTimeMin,
		SleepHours:        r.SleepHours,
		AttendancePercent: r.AttendancePercent,
		PhysicalActivity:  r.PhysicalActivity,
		RevisionTimeMin:   r.RevisionTimeMin,
		DistractingApps:   r.DistractingApps,
		EduYouTubeMin:     r.EduYouTubeMin,
		AcademicGoal:      r.AcademicGoal,
	}
}

func (d recordDoc) toRecord() metrics.Record {
	return metrics.Record{
		StudyTimeMin:      d.StudyTimeMin,
		ScreenTimeMin:     d.ScreenTimeMin,
		SleepHours:        d.SleepHours,
		AttendancePercent: d.AttendancePercent,
		PhysicalActivity:  d.PhysicalActivity,
		RevisionTimeMin:   d.RevisionTimeMin,
		DistractingApps:   d.DistractingApps,
		EduYouTubeMin:     d.EduYouTubeMin,
		AcademicGoal:      d.AcademicGoal,
	}
}

// Save stores one assessment.
func (r *AssessmentRepository) Save(ctx context.Context, a *assessment.Assessment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	metricsJSON, err := json.Marshal(toDoc(a.Record))
	if err != nil {
		return fmt.Errorf("postgres: marshaling metrics: %w", err)
	}

	tips := a.Tips
	if tips == nil {
		tips = []string{}
	}
	tipsJSON, err := json.Marshal(tips)
	if err != nil {
		return fmt.Errorf("postgres: marshaling tips: %w", err)
	}

	_, err = r.conn.Exec(ctx,
		`INSERT INTO assessments (id, metrics, label, tips, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, metricsJSON, a.Label, tipsJSON, a.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("assessment", "Save", shared.ErrAlreadyExists,
				fmt.Sprintf("assessment %s already exists", a.ID))
		}
		return fmt.Errorf("postgres: saving assessment: %w", err)
	}

	return nil
}

// ListRecent returns the most recent assessments, newest first.
func (r *AssessmentRepository) ListRecent(ctx context.Context, limit int) ([]*assessment.Assessment, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.conn.Query(ctx,
		`SELECT id, metrics, label, tips, created_at
		 FROM assessments
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing assessments: %w", err)
	}
	defer rows.Close()

	result := make([]*assessment.Assessment, 0, limit)
	for rows.Next() {
		var (
			id          string
			metricsJSON []byte
			label       string
			tipsJSON    []byte
			createdAt   time.Time
		)
		if err := rows.Scan(&id, &metricsJSON, &label, &tipsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning assessment: %w", err)
		}

		var doc recordDoc
		if err := json.Unmarshal(metricsJSON, &doc); err != nil {
			return nil, fmt.Errorf("postgres: unmarshaling metrics for %s: %w", id, err)
		}
		var tips []string
		if err := json.Unmarshal(tipsJSON, &tips); err != nil {
			return nil, fmt.Errorf("postgres: unmarshaling tips for %s: %w", id, err)
		}

		result = append(result, &assessment.Assessment{
			ID:        id,
			Record:    doc.toRecord(),
			Label:     label,
			Tips:      tips,
			CreatedAt: createdAt,
		})
	}

	return result, rows.Err()
}
