// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package svd

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// Metrics holds offline evaluation results.
type Metrics struct {
	RMSE    float64
	MAE     float64
	Samples int
}

// Evaluate scores the model against held-out samples.
func Evaluate(m *Model, test []Rating) Metrics {
	if len(test) == 0 {
		return Metrics{}
	}

	var sqSum, absSum float64
	for _, s := range test {
		err := m.Predict(s.UserID, s.MovieID) - s.Rating
		sqSum += err * err
		absSum += math.Abs(err)
	}

	n := float64(len(test))
	return Metrics{
		RMSE:    math.Sqrt(sqSum / n),
		MAE:     absSum / n,
		Samples: len(test),
	}
}

// CrossValidate runs k-fold cross-validation and returns metrics averaged
// over the folds. Fold assignment is deterministic for a given seed.
func CrossValidate(ctx context.Context, samples []Rating, cfg Config, k int) (Metrics, error) {
	if k < 2 {
		return Metrics{}, fmt.Errorf("cross-validation requires k >= 2, got %d", k)
	}
	if len(samples) < k {
		return Metrics{}, fmt.Errorf("not enough samples (%d) for %d folds", len(samples), k)
	}

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducibility, not cryptography
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var sum Metrics
	for fold := 0; fold < k; fold++ {
		if err := ctx.Err(); err != nil {
			return Metrics{}, fmt.Errorf("cross-validation cancelled at fold %d: %w", fold, err)
		}

		train, test := splitFold(samples, order, fold, k)
		m, err := Train(ctx, train, cfg)
		if err != nil {
			return Metrics{}, fmt.Errorf("fold %d: %w", fold, err)
		}

		metrics := Evaluate(m, test)
		sum.RMSE += metrics.RMSE
		sum.MAE += metrics.MAE
		sum.Samples += metrics.Samples
	}

	return Metrics{
		RMSE:    sum.RMSE / float64(k),
		MAE:     sum.MAE / float64(k),
		Samples: sum.Samples,
	}, nil
}

func splitFold(samples []Rating, order []int, fold, k int) (train, test []Rating) {
	foldSize := len(order) / k
	lo := fold * foldSize
	hi := lo + foldSize
	if fold == k-1 {
		hi = len(order)
	}

	test = make([]Rating, 0, hi-lo)
	train = make([]Rating, 0, len(order)-(hi-lo))
	for pos, idx := range order {
		if pos >= lo && pos < hi {
			test = append(test, samples[idx])
		} else {
			train = append(train, samples[idx])
		}
	}
	return train, test
}

// GridResult pairs a candidate configuration with its cross-validated
// metrics.
type GridResult struct {
	Config  Config
	Metrics Metrics
}

// GridSearch cross-validates every candidate configuration and returns all
// results with the best (lowest RMSE) first.
func GridSearch(ctx context.Context, samples []Rating, grid []Config, k int) ([]GridResult, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("empty parameter grid")
	}

	results := make([]GridResult, 0, len(grid))
	for _, cfg := range grid {
		metrics, err := CrossValidate(ctx, samples, cfg, k)
		if err != nil {
			return nil, err
		}
		results = append(results, GridResult{Config: cfg, Metrics: metrics})
	}

	// Insertion sort keeps ties in grid order.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Metrics.RMSE < results[j-1].Metrics.RMSE; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}

	return results, nil
}
