// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinelens/cinelens/internal/cache"
	"github.com/cinelens/cinelens/internal/dataset"
	"github.com/cinelens/cinelens/internal/metrics"
)

// Note: this package depends on dataset only for its value types and
// error taxonomy. All data access goes through the Provider interface,
// which keeps the engine testable without a loaded dataset.

// Engine produces top-N movie recommendations. Users with rating
// history are scored by the trained predictor; users without history
// fall back to a demographic nearest-neighbor path. Results are cached
// per (user, n) until the user table changes.
//
// Engine is safe for concurrent use.
type Engine struct {
	cfg       *Config
	logger    zerolog.Logger
	provider  Provider
	predictor TrainedPredictor
	results   *cache.ResultCache[[]ScoredMovie]
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, provider Provider, predictor TrainedPredictor, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, errors.New("provider not set")
	}
	if predictor == nil {
		return nil, errors.New("predictor not set")
	}

	return &Engine{
		cfg:       cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		provider:  provider,
		predictor: predictor,
		results:   cache.NewResultCache[[]ScoredMovie](cfg.CacheCapacity),
	}, nil
}

// InvalidateCache drops all cached results. The user registry calls
// this whenever the user table changes, since cold-start scoring
// depends on the full demographic population.
func (e *Engine) InvalidateCache() {
	e.results.Invalidate()
	metrics.CacheInvalidations.Inc()
	metrics.CacheSize.Set(0)
	e.logger.Debug().Msg("result cache invalidated")
}

// Recommend returns up to n recommendations for userID, best first.
// An empty slice is a valid answer: a user who has rated the whole
// catalog, or a cold user with no scorable neighbors, gets no items
// and no error. Unknown users get a *NotFoundError.
func (e *Engine) Recommend(ctx context.Context, userID, n int) ([]ScoredMovie, error) {
	start := time.Now()

	if !e.provider.UserExists(userID) {
		metrics.RecommendationErrors.WithLabelValues("not_found").Inc()
		return nil, &NotFoundError{UserID: userID}
	}
	if n <= 0 {
		return []ScoredMovie{}, nil
	}

	key := cache.Key{UserID: userID, N: n}
	if cached, ok := e.results.Get(key); ok {
		metrics.CacheHits.Inc()
		e.logger.Debug().Int("user_id", userID).Int("n", n).Msg("cache hit")
		return cached, nil
	}
	metrics.CacheMisses.Inc()

	var (
		result []ScoredMovie
		path   string
		err    error
	)
	if e.provider.HasRatings(userID) {
		path = "warm"
		result, err = e.recommendWarm(ctx, userID, n)
	} else {
		result, path, err = e.recommendCold(ctx, userID, n)
	}
	if err != nil {
		metrics.RecommendationErrors.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}

	e.results.Add(key, result)
	_, _, size := e.results.Stats()
	metrics.CacheSize.Set(float64(size))
	metrics.RecordRecommendation(path, time.Since(start))

	e.logger.Debug().
		Int("user_id", userID).
		Int("n", n).
		Str("path", path).
		Int("returned", len(result)).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("recommendation complete")

	return result, nil
}

// recommendWarm scores every unrated catalog movie with the trained
// predictor. The predictor works on the centered scale, so the user's
// live rating mean is added back before ranking.
func (e *Engine) recommendWarm(ctx context.Context, userID, n int) ([]ScoredMovie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rated := e.provider.UserRatings(userID)
	mean := ratingMean(rated)

	catalog := e.provider.Movies()
	scored := make([]ScoredMovie, 0, len(catalog))
	for _, m := range catalog {
		if _, ok := rated[m.ID]; ok {
			continue
		}
		scored = append(scored, ScoredMovie{
			MovieID: m.ID,
			Title:   m.Title,
			Score:   mean + e.predictor.Estimate(userID, m.ID),
		})
	}

	return topN(scored, n), nil
}

// topN sorts scored movies by score descending and truncates to n.
// The input arrives in catalog order; reversing it before the stable
// sort makes equal scores prefer the later catalog entry, which is the
// selection order of an ascending argsort consumed from the top.
func topN(scored []ScoredMovie, n int) []ScoredMovie {
	for i, j := 0, len(scored)-1; i < j; i, j = i+1, j-1 {
		scored[i], scored[j] = scored[j], scored[i]
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// ratingMean returns the mean of a ratings row, or 0 for an empty row.
func ratingMean(ratings map[int]float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// errorReason maps an error to its metrics label.
func errorReason(err error) string {
	var storageErr *dataset.StorageError
	if errors.As(err, &storageErr) {
		return "storage"
	}
	return "internal"
}
