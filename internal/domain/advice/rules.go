package advice

import (
	"fmt"
	"math"
	"strconv"
)

// Performance labels the classifier emits. Any label without its own rule
// branch is treated as "Good".
const (
	LabelPoor    = "Poor"
	LabelAverage = "Average"
	LabelGood    = "Good"
)

// Rule thresholds.
const (
	attendanceCritical = 60  // below this attendance is critical
	attendanceModerate = 75  // below this attendance needs improvement
	sleepEmergency     = 5   // hours; below this sleep is an emergency
	sleepLow           = 6   // hours; below this sleep is too low
	ratioImbalanced    = 0.5 // study:screen ratio below this is imbalanced

	poorStudyTarget    = 120 // minutes/day the Poor branch pushes toward
	poorAppLimit       = 5   // distracting apps above this trigger cleanup
	poorAppKeep        = 2   // apps to keep after cleanup
	averageStudyTarget = 150 // minutes/day the Average branch pushes toward
	revisionTarget     = 180 // minutes/week of revision

	goodAttendanceBar = 85  // Good branch consistency threshold
	eduShareTarget    = 0.3 // educational share of screen time to aim for
)

// num renders a metric value the way it was entered: no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Critical severity ladders. Each metric's tiers are mutually exclusive:
// the moderate tier explicitly excludes the critical range, so only the
// most severe matching tier fires.
var criticalRules = []Rule{
	{
		Name: "attendance_critical",
		When: func(c Context) bool { return c.Record.AttendancePercent < attendanceCritical },
		Tip: func(c Context) string {
			return fmt.Sprintf("🚨 Critical: Your %s%% attendance is too low - aim for at least 80%%",
				num(c.Record.AttendancePercent))
		},
	},
	{
		Name: "attendance_moderate",
		When: func(c Context) bool {
			return c.Record.AttendancePercent >= attendanceCritical &&
				c.Record.AttendancePercent < attendanceModerate
		},
		Tip: func(c Context) string {
			return fmt.Sprintf("🏫 Increase class attendance from %s%% to 80%%+ for better understanding",
				num(c.Record.AttendancePercent))
		},
	},
	{
		Name: "sleep_emergency",
		When: func(c Context) bool { return c.Record.SleepHours < sleepEmergency },
		Tip: func(c Context) string {
			return fmt.Sprintf("😴 Emergency: Increase sleep from %s hours to at least 6 (7-8 ideal)",
				num(c.Record.SleepHours))
		},
	},
	{
		Name: "sleep_low",
		When: func(c Context) bool {
			return c.Record.SleepHours >= sleepEmergency && c.Record.SleepHours < sleepLow
		},
		Tip: func(c Context) string {
			return fmt.Sprintf("🛌 Low sleep (%s hours) affects memory - aim for 7-8 hours",
				num(c.Record.SleepHours))
		},
	},
	{
		Name: "study_screen_imbalance",
		When: func(c Context) bool { return c.StudyScreenRatio() < ratioImbalanced },
		Tip: func(c Context) string {
			ratio := c.StudyScreenRatio()
			if ratio <= 0 {
				// Zero study time against positive screen time: the inverse
				// ratio is undefined, so the tip names the gap directly.
				return "📊 You studied 0 minutes against your screen time - aim for at least 1:1 balance"
			}
			inverse := math.Round(1/ratio*10) / 10
			return fmt.Sprintf("📊 Your study:screen ratio is 1:%s - aim for at least 1:1 balance",
				num(inverse))
		},
	},
}

// Poor branch: aggressive interventions on study time and distractions.
var poorRules = []Rule{
	{
		Name: "poor_double_study",
		When: func(c Context) bool { return c.Record.StudyTimeMin < poorStudyTarget },
		Tip: func(c Context) string {
			return fmt.Sprintf("⏰ Double study time from %smin to at least 2 hours daily",
				num(c.Record.StudyTimeMin))
		},
	},
	{
		Name: "poor_app_cleanup",
		When: func(c Context) bool { return c.Record.DistractingApps > poorAppLimit },
		Tip: func(c Context) string {
			return fmt.Sprintf("📵 Delete %d apps - keep only %d essential ones",
				c.Record.DistractingApps-poorAppKeep, poorAppKeep)
		},
	},
}

// Average branch: close the exact gap to the study and revision targets.
var averageRules = []Rule{
	{
		Name: "average_study_gap",
		When: func(c Context) bool { return c.Record.StudyTimeMin < averageStudyTarget },
		Tip: func(c Context) string {
			return fmt.Sprintf("📖 Increase study time by %s minutes to reach 2.5 hours",
				num(averageStudyTarget-c.Record.StudyTimeMin))
		},
	},
	{
		Name: "average_revision_gap",
		When: func(c Context) bool { return c.Record.RevisionTimeMin < revisionTarget },
		Tip: func(c Context) string {
			return fmt.Sprintf("🔁 Add %s minutes of weekly revision",
				num(revisionTarget-c.Record.RevisionTimeMin))
		},
	},
}

// Good branch (and any unrecognized label). The consistency tip keys on
// attendance alone: the upstream product additionally checked a "weekly
// physical play minutes" input that exists nowhere in the metric schema,
// so that half of the condition was dropped (see DESIGN.md).
var goodRules = []Rule{
	{
		Name: "good_consistency",
		When: func(c Context) bool { return c.Record.AttendancePercent > goodAttendanceBar },
		Tip: func(c Context) string {
			return "🎯 Maintain 75% attendance consistently to stay on top"
		},
	},
	{
		Name: "good_edu_share",
		When: func(c Context) bool { return c.EduScreenRatio() < eduShareTarget },
		Tip: func(c Context) string {
			return "🧠 Increase educational content to 30%+ of screen time for maximum benefit"
		},
	},
}

// Universal study-hygiene tips, appended in this order when fewer than four
// tips were produced by the rule bands.
var fillerTips = []string{
	"📅 Plan your week every Sunday night",
	"🔄 Review notes within 24 hours of class",
	"💧 Stay hydrated - even mild dehydration reduces focus",
	"☕ Limit caffeine after 2PM for better sleep quality",
}
