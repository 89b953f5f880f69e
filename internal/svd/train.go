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
	"time"
)

// Config holds training hyperparameters.
type Config struct {
	Factors        int
	Epochs         int
	LearningRate   float64
	Regularization float64

	// Seed makes factor initialization and sample shuffling deterministic.
	Seed int64
}

// DefaultConfig returns hyperparameters that work well on the 100k dataset.
func DefaultConfig() Config {
	return Config{
		Factors:        50,
		Epochs:         20,
		LearningRate:   0.005,
		Regularization: 0.02,
		Seed:           42,
	}
}

// Validate checks the hyperparameters.
func (c Config) Validate() error {
	if c.Factors < 1 {
		return fmt.Errorf("factors must be positive, got %d", c.Factors)
	}
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", c.LearningRate)
	}
	if c.Regularization < 0 {
		return fmt.Errorf("regularization must not be negative, got %g", c.Regularization)
	}
	return nil
}

// Train fits a factor model on the samples by SGD over per-user
// mean-centered residuals. The context is checked between epochs.
func Train(ctx context.Context, samples []Rating, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no training samples")
	}

	m := newModel(samples, cfg)
	residuals := centeredResiduals(samples, m)

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducibility, not cryptography
	initFactors(m, rng)

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	lr, reg := cfg.LearningRate, cfg.Regularization
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training cancelled at epoch %d: %w", epoch, err)
		}

		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		for _, idx := range order {
			s := samples[idx]
			ui := m.UserIndex[s.UserID]
			ii := m.ItemIndex[s.MovieID]
			pu, qi := m.P[ui], m.Q[ii]

			var dot float64
			for f := 0; f < cfg.Factors; f++ {
				dot += pu[f] * qi[f]
			}
			e := residuals[idx] - dot

			for f := 0; f < cfg.Factors; f++ {
				puf := pu[f]
				pu[f] += lr * (e*qi[f] - reg*puf)
				qi[f] += lr * (e*puf - reg*qi[f])
			}
		}
	}

	m.TrainedAt = time.Now()
	return m, nil
}

// newModel indexes the users and movies present in the samples and
// computes the rating means.
func newModel(samples []Rating, cfg Config) *Model {
	m := &Model{
		Factors:   cfg.Factors,
		UserIndex: make(map[int]int),
		ItemIndex: make(map[int]int),
		UserMeans: make(map[int]float64),
		RatingMin: math.Inf(1),
		RatingMax: math.Inf(-1),
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	var total float64
	for _, s := range samples {
		if _, ok := m.UserIndex[s.UserID]; !ok {
			m.UserIndex[s.UserID] = len(m.UserIndex)
		}
		if _, ok := m.ItemIndex[s.MovieID]; !ok {
			m.ItemIndex[s.MovieID] = len(m.ItemIndex)
		}
		sums[s.UserID] += s.Rating
		counts[s.UserID]++
		total += s.Rating
		if s.Rating < m.RatingMin {
			m.RatingMin = s.Rating
		}
		if s.Rating > m.RatingMax {
			m.RatingMax = s.Rating
		}
	}

	for id, sum := range sums {
		m.UserMeans[id] = sum / float64(counts[id])
	}
	m.GlobalMean = total / float64(len(samples))

	m.P = make([][]float64, len(m.UserIndex))
	for i := range m.P {
		m.P[i] = make([]float64, cfg.Factors)
	}
	m.Q = make([][]float64, len(m.ItemIndex))
	for i := range m.Q {
		m.Q[i] = make([]float64, cfg.Factors)
	}

	return m
}

func centeredResiduals(samples []Rating, m *Model) []float64 {
	residuals := make([]float64, len(samples))
	for i, s := range samples {
		residuals[i] = s.Rating - m.UserMeans[s.UserID]
	}
	return residuals
}

func initFactors(m *Model, rng *rand.Rand) {
	scale := 0.1 / math.Sqrt(float64(m.Factors))
	for _, row := range m.P {
		for f := range row {
			row[f] = rng.NormFloat64() * scale
		}
	}
	for _, row := range m.Q {
		for f := range row {
			row[f] = rng.NormFloat64() * scale
		}
	}
}
