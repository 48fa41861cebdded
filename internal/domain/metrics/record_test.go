package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypulse/performance-hub/internal/domain/shared"
)

func validInput() map[string]string {
	return map[string]string{
		"study_time":   "120",
		"screen_time":  "300",
		"sleep":        "7.5",
		"attendance":   "85",
		"activity":     "Yes",
		"revision":     "180",
		"distractions": "3",
		"edu_youtube":  "45",
		"goal":         "no",
	}
}

func TestParseRecord_Valid(t *testing.T) {
	rec, err := ParseRecord(validInput())
	require.NoError(t, err)

	assert.Equal(t, 120.0, rec.StudyTimeMin)
	assert.Equal(t, 300.0, rec.ScreenTimeMin)
	assert.Equal(t, 7.5, rec.SleepHours)
	assert.Equal(t, 85.0, rec.AttendancePercent)
	assert.True(t, rec.PhysicalActivity)
	assert.Equal(t, 180.0, rec.RevisionTimeMin)
	assert.Equal(t, 3, rec.DistractingApps)
	assert.Equal(t, 45.0, rec.EduYouTubeMin)
	assert.False(t, rec.AcademicGoal)
}

func TestParseRecord_SchemaAliases(t *testing.T) {
	raw := map[string]string{
		"study_time_min":           "90",
		"total_screen_time_min":    "200",
		"sleep_hours":              "6",
		"class_attendance_percent": "70",
		"physical_activity":        "yes",
		"weekly_revision_time_min": "100",
		"distracting_app_count":    "5",
		"daily_youtube_edu_min":    "20",
		"academic_goal":            "Yes",
	}

	rec, err := ParseRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, 90.0, rec.StudyTimeMin)
	assert.True(t, rec.AcademicGoal)
}

func TestParseRecord_MissingField(t *testing.T) {
	raw := validInput()
	delete(raw, "sleep")

	_, err := ParseRecord(raw)
	require.Error(t, err)
	assert.True(t, shared.IsMissingField(err))
	assert.Contains(t, err.Error(), "sleep")
}

func TestParseRecord_InvalidValue(t *testing.T) {
	raw := validInput()
	raw["attendance"] = "lots"

	_, err := ParseRecord(raw)
	require.Error(t, err)
	assert.True(t, shared.IsInvalidValue(err))
}

func TestParseRecord_NegativeValueRejected(t *testing.T) {
	raw := validInput()
	raw["study_time"] = "-30"

	_, err := ParseRecord(raw)
	require.Error(t, err)
	assert.True(t, shared.IsInvalidValue(err))
}

func TestParseRecord_NonFiniteValueRejected(t *testing.T) {
	// strconv.ParseFloat happily parses these; they must not reach the
	// feature vector.
	for _, value := range []string{"NaN", "Inf", "+Inf", "-Inf", "inf"} {
		for _, field := range []string{"sleep", "attendance", "study_time", "distractions"} {
			raw := validInput()
			raw[field] = value

			_, err := ParseRecord(raw)
			require.Error(t, err, "field %s value %q", field, value)
			assert.True(t, shared.IsInvalidValue(err), "field %s value %q", field, value)
		}
	}
}

func TestParseRecord_AttendanceClamped(t *testing.T) {
	raw := validInput()
	raw["attendance"] = "130"

	rec, err := ParseRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rec.AttendancePercent)
}

func TestParseRecord_FreeTextDurations(t *testing.T) {
	raw := validInput()
	raw["study_time"] = "2hrs 30min"
	raw["revision"] = "1.5 hours"
	raw["edu_youtube"] = "45min"

	rec, err := ParseRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, 150.0, rec.StudyTimeMin)
	assert.Equal(t, 90.0, rec.RevisionTimeMin)
	assert.Equal(t, 45.0, rec.EduYouTubeMin)
}

func TestParseRecord_UnknownBooleanTextIsFalse(t *testing.T) {
	raw := validInput()
	raw["activity"] = "sometimes"

	rec, err := ParseRecord(raw)
	require.NoError(t, err)
	assert.False(t, rec.PhysicalActivity)
}

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"90", 90},
		{"45.5", 45.5},
		{"7hrs 36min", 456},
		{"2hrs", 120},
		{"45min", 45},
		{"1.5 hours", 90},
		{"1 hour 15 minutes", 75},
	}

	for _, tc := range cases {
		got, err := ParseMinutes(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseMinutes_Invalid(t *testing.T) {
	for _, in := range []string{"", "lots", "hrs", "NaN", "Inf", "-Inf"} {
		_, err := ParseMinutes(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFeatures_SchemaOrder(t *testing.T) {
	rec := Record{
		StudyTimeMin:      120,
		ScreenTimeMin:     300,
		SleepHours:        7.5,
		AttendancePercent: 85,
		PhysicalActivity:  true,
		RevisionTimeMin:   180,
		DistractingApps:   3,
		EduYouTubeMin:     45,
		AcademicGoal:      false,
	}

	fv := rec.Features()
	require.Len(t, fv, len(FeatureNames))
	assert.Equal(t, FeatureVector{120, 300, 7.5, 85, 1, 180, 3, 45, 0}, fv)
}
