// Package advice implements the rule-based advisory engine that turns a
// predicted performance label and the raw lifestyle metrics into a short,
// prioritized list of improvement tips.
//
// The engine is an ordered rule list, not a tree of conditionals: each rule
// is a (predicate, tip factory) pair evaluated in a fixed order, so rules
// can be tested independently and reordered without touching unrelated logic.
package advice

import (
	"github.com/studypulse/performance-hub/internal/domain/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// RULES
// ══════════════════════════════════════════════════════════════════════════════

// Context carries everything a rule may inspect: the predicted label and the
// original (pre-normalization) metric record.
type Context struct {
	Label  string
	Record metrics.Record
}

// StudyScreenRatio returns study time divided by screen time. A zero screen
// time is treated as a balanced ratio of 1 so no rule ever divides by zero.
func (c Context) StudyScreenRatio() float64 {
	if c.Record.ScreenTimeMin <= 0 {
		return 1
	}
	return c.Record.StudyTimeMin / c.Record.ScreenTimeMin
}

// EduScreenRatio returns the educational share of screen time, or 1 (fully
// educational, nothing to improve) when screen time is zero.
func (c Context) EduScreenRatio() float64 {
	if c.Record.ScreenTimeMin <= 0 {
		return 1
	}
	return c.Record.EduYouTubeMin / c.Record.ScreenTimeMin
}

// Rule is one advisory rule: fires when When returns true, producing Tip.
type Rule struct {
	// Name identifies the rule in tests and logs.
	Name string

	// When reports whether the rule applies to the given context.
	When func(Context) bool

	// Tip renders the advisory string. Only called when When returned true.
	Tip func(Context) string
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Config controls engine behavior.
type Config struct {
	// FillerTips pads short tip lists with universal study-hygiene tips.
	FillerTips bool
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{FillerTips: true}
}

// Engine generates ranked advisory tips. Construction is cheap and the
// engine is immutable and safe for concurrent use.
type Engine struct {
	critical []Rule
	byLabel  map[string][]Rule
	fallback []Rule // used for any label without its own branch ("Good" included)
	filler   []string

	minTips int
	maxTips int
}

// NewEngine creates an Engine with the default rule set.
func NewEngine(cfg Config) *Engine {
	filler := fillerTips
	if !cfg.FillerTips {
		filler = nil
	}
	return &Engine{
		critical: criticalRules,
		byLabel: map[string][]Rule{
			LabelPoor:    poorRules,
			LabelAverage: averageRules,
		},
		fallback: goodRules,
		filler:   filler,
		minTips:  4,
		maxTips:  5,
	}
}

// Generate produces at most 5 tips for the given label and record, in
// priority order: critical severity ladders first (label-independent),
// then exactly one label-conditioned branch, then generic filler until at
// least 4 tips are present. Duplicate strings are dropped. Never fails:
// every ratio is guarded, so a well-formed record cannot cause an error.
func (e *Engine) Generate(label string, rec metrics.Record) []string {
	ctx := Context{Label: label, Record: rec}

	tips := make([]string, 0, e.maxTips)
	seen := make(map[string]struct{}, e.maxTips)

	appendTip := func(tip string) {
		if _, dup := seen[tip]; dup {
			return
		}
		seen[tip] = struct{}{}
		tips = append(tips, tip)
	}

	// Band 1: critical thresholds, independent of the predicted label.
	for _, rule := range e.critical {
		if rule.When(ctx) {
			appendTip(rule.Tip(ctx))
		}
	}

	// Band 2: the single branch selected by the label.
	branch, ok := e.byLabel[label]
	if !ok {
		branch = e.fallback
	}
	for _, rule := range branch {
		if rule.When(ctx) {
			appendTip(rule.Tip(ctx))
		}
	}

	// Band 3: pad with universal study-hygiene tips.
	for _, tip := range e.filler {
		if len(tips) >= e.minTips {
			break
		}
		appendTip(tip)
	}

	if len(tips) > e.maxTips {
		tips = tips[:e.maxTips]
	}
	return tips
}
