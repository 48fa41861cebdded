package config

// FeatureFlags toggles the optional surfaces of the service. Everything the
// core prediction path needs is always on; these gate the infrastructure
// around it so the service degrades gracefully in minimal deployments.
type FeatureFlags struct {
	// HistoryEnabled persists every assessment to PostgreSQL and exposes
	// the recent-assessments endpoint.
	HistoryEnabled bool

	// CacheEnabled caches prediction responses in Redis keyed by the
	// feature vector.
	CacheEnabled bool

	// RetrainEnabled exposes the authenticated retrain endpoint that
	// re-reads the dataset and atomically swaps the model.
	RetrainEnabled bool

	// FillerTips pads short tip lists with universal study-hygiene tips.
	// Disabling it returns only rule-derived tips.
	FillerTips bool
}

// LoadFeatureFlags reads feature toggles from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	return &FeatureFlags{
		HistoryEnabled: getEnvBool("FEATURE_HISTORY", false),
		CacheEnabled:   getEnvBool("FEATURE_CACHE", false),
		RetrainEnabled: getEnvBool("FEATURE_RETRAIN", true),
		FillerTips:     getEnvBool("FEATURE_FILLER_TIPS", true),
	}
}
