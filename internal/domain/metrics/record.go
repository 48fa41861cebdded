// Package metrics contains the student lifestyle metric model and its
// normalization into the numeric feature schema the classifier is trained on.
// This is the core of the domain - no external dependencies here.
package metrics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEATURE SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

// FeatureNames lists the classifier's input columns in training order.
// The order must match the historical dataset exactly; Record.Features()
// and the dataset loader both derive their layout from this slice.
var FeatureNames = []string{
	"study_time_min",
	"total_screen_time_min",
	"sleep_hours",
	"class_attendance_percent",
	"physical_activity",
	"weekly_revision_time_min",
	"distracting_app_count",
	"daily_youtube_edu_min",
	"academic_goal",
}

// FeatureVector is a fixed-schema numeric encoding of a Record, ordered
// according to FeatureNames with booleans encoded as 0/1.
type FeatureVector []float64

// ══════════════════════════════════════════════════════════════════════════════
// RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record holds one student's self-reported lifestyle observations.
// All numeric fields are non-negative; attendance is clamped to [0,100]
// at the parsing boundary.
type Record struct {
	// StudyTimeMin is daily study time in minutes.
	StudyTimeMin float64

	// ScreenTimeMin is total daily screen time in minutes.
	ScreenTimeMin float64

	// SleepHours is average nightly sleep in hours.
	SleepHours float64

	// AttendancePercent is class attendance in [0,100].
	AttendancePercent float64

	// PhysicalActivity reports whether the student exercises regularly.
	PhysicalActivity bool

	// RevisionTimeMin is weekly revision time in minutes.
	RevisionTimeMin float64

	// DistractingApps is the count of distracting apps installed.
	DistractingApps int

	// EduYouTubeMin is daily educational YouTube time in minutes.
	EduYouTubeMin float64

	// AcademicGoal reports whether the student has set an academic goal.
	AcademicGoal bool
}

// Features encodes the record as a FeatureVector in FeatureNames order.
// Pure function: no side effects, no validation (the record is already
// validated at the parsing boundary).
func (r Record) Features() FeatureVector {
	return FeatureVector{
		r.StudyTimeMin,
		r.ScreenTimeMin,
		r.SleepHours,
		r.AttendancePercent,
		boolToFeature(r.PhysicalActivity),
		r.RevisionTimeMin,
		float64(r.DistractingApps),
		r.EduYouTubeMin,
		boolToFeature(r.AcademicGoal),
	}
}

func boolToFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ══════════════════════════════════════════════════════════════════════════════
// PARSING
// ══════════════════════════════════════════════════════════════════════════════

// Raw field names as delivered by the request-parsing shell, with the
// classifier schema names accepted as aliases.
var fieldAliases = map[string][]string{
	"study_time":   {"study_time", "study_time_min"},
	"screen_time":  {"screen_time", "total_screen_time_min"},
	"sleep":        {"sleep", "sleep_hours"},
	"attendance":   {"attendance", "class_attendance_percent"},
	"activity":     {"activity", "physical_activity"},
	"revision":     {"revision", "weekly_revision_time_min"},
	"distractions": {"distractions", "distracting_app_count"},
	"edu_youtube":  {"edu_youtube", "daily_youtube_edu_min"},
	"goal":         {"goal", "academic_goal"},
}

// ParseRecord builds a Record from the raw field mapping extracted by the
// request-parsing collaborator. Minute-valued fields accept plain numbers
// or free-text durations ("2hrs 30min", "45min"). Boolean-like fields map
// "yes"/"no" (case-insensitive) to true/false; any other text is treated
// as false rather than rejected - lenient by policy, since these come from
// end-user form input (see DESIGN.md).
//
// Fails with a MissingFieldError kind when a required field is absent and
// an InvalidValueError kind when a numeric field cannot be parsed or is
// negative.
func ParseRecord(raw map[string]string) (Record, error) {
	var rec Record
	var err error

	if rec.StudyTimeMin, err = parseMinutesField(raw, "study_time"); err != nil {
		return Record{}, err
	}
	if rec.ScreenTimeMin, err = parseMinutesField(raw, "screen_time"); err != nil {
		return Record{}, err
	}
	if rec.SleepHours, err = parseFloatField(raw, "sleep"); err != nil {
		return Record{}, err
	}
	if rec.AttendancePercent, err = parseFloatField(raw, "attendance"); err != nil {
		return Record{}, err
	}
	// Attendance invariant: the core expects [0,100]; clamp here at the boundary.
	if rec.AttendancePercent > 100 {
		rec.AttendancePercent = 100
	}
	if rec.PhysicalActivity, err = parseBoolField(raw, "activity"); err != nil {
		return Record{}, err
	}
	if rec.RevisionTimeMin, err = parseMinutesField(raw, "revision"); err != nil {
		return Record{}, err
	}
	if rec.DistractingApps, err = parseIntField(raw, "distractions"); err != nil {
		return Record{}, err
	}
	if rec.EduYouTubeMin, err = parseMinutesField(raw, "edu_youtube"); err != nil {
		return Record{}, err
	}
	if rec.AcademicGoal, err = parseBoolField(raw, "goal"); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// lookupField resolves a field through its aliases.
func lookupField(raw map[string]string, field string) (string, error) {
	for _, name := range fieldAliases[field] {
		if v, ok := raw[name]; ok {
			return strings.TrimSpace(v), nil
		}
	}
	return "", shared.NewDomainError("metrics", "Parse", shared.ErrMissingField,
		fmt.Sprintf("missing field: %s", field))
}

func parseFloatField(raw map[string]string, field string) (float64, error) {
	v, err := lookupField(raw, field)
	if err != nil {
		return 0, err
	}
	f, convErr := strconv.ParseFloat(v, 64)
	if convErr != nil {
		return 0, invalidValue(field, v, convErr)
	}
	// ParseFloat accepts "NaN" and "Inf"; neither is a valid metric.
	if !isFinite(f) || f < 0 {
		return 0, invalidValue(field, v, nil)
	}
	return f, nil
}

func parseIntField(raw map[string]string, field string) (int, error) {
	v, err := lookupField(raw, field)
	if err != nil {
		return 0, err
	}
	// Tolerate "3.0" style counts from loosely typed form encoders.
	f, convErr := strconv.ParseFloat(v, 64)
	if convErr != nil {
		return 0, invalidValue(field, v, convErr)
	}
	if !isFinite(f) || f < 0 {
		return 0, invalidValue(field, v, nil)
	}
	return int(f), nil
}

// isFinite reports whether f is a real number (not NaN or an infinity).
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseBoolField(raw map[string]string, field string) (bool, error) {
	v, err := lookupField(raw, field)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(v, "yes"), nil
}

func parseMinutesField(raw map[string]string, field string) (float64, error) {
	v, err := lookupField(raw, field)
	if err != nil {
		return 0, err
	}
	m, convErr := ParseMinutes(v)
	if convErr != nil {
		return 0, invalidValue(field, v, convErr)
	}
	if m < 0 {
		return 0, invalidValue(field, v, nil)
	}
	return m, nil
}

func invalidValue(field, value string, err error) error {
	return shared.WrapError("metrics", "Parse", shared.ErrInvalidValue,
		fmt.Sprintf("invalid value for %s: %q", field, value), err)
}

// ══════════════════════════════════════════════════════════════════════════════
// DURATION PARSING
// ══════════════════════════════════════════════════════════════════════════════

var (
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*h(?:ou)?rs?`)
	minutesPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*min(?:ute)?s?`)
)

// ParseMinutes converts a free-text duration to minutes. Accepted forms:
// plain numbers ("90", "45.5"), hour/minute text ("7hrs 36min", "2hrs",
// "45min", "1.5 hours"). Returns an error for anything else.
func ParseMinutes(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	// Plain numeric value is already in minutes.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !isFinite(f) {
			return 0, fmt.Errorf("non-finite duration: %q", s)
		}
		return f, nil
	}

	var total float64
	matched := false

	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		h, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable hours in %q", s)
		}
		total += h * 60
		matched = true
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		min, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable minutes in %q", s)
		}
		total += min
		matched = true
	}

	if !matched {
		return 0, fmt.Errorf("unrecognized duration format: %q", s)
	}
	return total, nil
}
