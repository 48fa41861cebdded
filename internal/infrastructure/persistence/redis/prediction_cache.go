package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/studypulse/performance-hub/internal/domain/metrics"
)

// cachedPrediction is the JSON shape of one cached prediction outcome.
type cachedPrediction struct {
	Label string   `json:"label"`
	Tips  []string `json:"tips"`
}

// PredictionCache caches prediction outcomes keyed by the feature vector.
// Keys carry a model epoch so a retrain invalidates every cached entry at
// once without scanning Redis.
type PredictionCache struct {
	cache *Cache
	ttl   time.Duration
	epoch atomic.Int64
}

// NewPredictionCache creates a prediction cache with the given TTL.
// A non-positive TTL falls back to TTLPrediction.
func NewPredictionCache(cache *Cache, ttl time.Duration) *PredictionCache {
	if ttl <= 0 {
		ttl = TTLPrediction
	}
	return &PredictionCache{
		cache: cache,
		ttl:   ttl,
	}
}

// BumpEpoch advances the model epoch, invalidating all cached predictions.
// Called after a retrain swaps the model.
func (p *PredictionCache) BumpEpoch() {
	p.epoch.Add(1)
}

// Get returns the cached prediction for the feature vector, if any.
// A miss (or any Redis failure) returns false; prediction is cheap enough
// that cache errors should never fail a request.
func (p *PredictionCache) Get(ctx context.Context, fv metrics.FeatureVector) (string, []string, bool) {
	var cached cachedPrediction
	if err := p.cache.Get(ctx, p.key(fv), &cached); err != nil {
		return "", nil, false
	}
	return cached.Label, cached.Tips, true
}

// Put stores a prediction outcome for the feature vector.
func (p *PredictionCache) Put(ctx context.Context, fv metrics.FeatureVector, label string, tips []string) error {
	value := cachedPrediction{Label: label, Tips: tips}
	if err := p.cache.Set(ctx, p.key(fv), value, p.ttl); err != nil && !errors.Is(err, ErrCacheKeyEmpty) {
		return fmt.Errorf("prediction cache: %w", err)
	}
	return nil
}

// key derives a stable cache key from the feature vector and model epoch.
func (p *PredictionCache) key(fv metrics.FeatureVector) string {
	h := sha256.New()
	for _, v := range fv {
		h.Write([]byte(strconv.FormatFloat(v, 'f', -1, 64)))
		h.Write([]byte{'|'})
	}
	return fmt.Sprintf("%s%d:%s", PrefixPrediction, p.epoch.Load(), hex.EncodeToString(h.Sum(nil)))
}
