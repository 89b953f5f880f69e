// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

// Package svd implements the latent-factor rating model behind the warm
// recommendation path: matrix factorization trained by stochastic gradient
// descent over per-user mean-centered ratings.
//
// The model predicts the centered component of a rating. Callers add the
// user's mean back to obtain an absolute score, which keeps the model
// independent of per-user rating bias.
package svd

import "time"

// Rating is a training sample.
type Rating struct {
	UserID  int
	MovieID int
	Rating  float64
}

// Model holds the trained factor matrices. Factors for a user or movie the
// model has never seen do not exist; Estimate returns 0 for them, leaving
// the caller with the user-mean baseline.
type Model struct {
	Factors int

	// UserIndex and ItemIndex map IDs to factor matrix rows.
	UserIndex map[int]int
	ItemIndex map[int]int

	// P and Q are the user and item factor matrices.
	P [][]float64
	Q [][]float64

	// UserMeans holds the per-user rating means from training. GlobalMean
	// is the fallback for users absent from training.
	UserMeans  map[int]float64
	GlobalMean float64

	// RatingMin and RatingMax bound the rating scale; centered estimates
	// are clamped to [-(RatingMax-RatingMin), RatingMax-RatingMin].
	RatingMin float64
	RatingMax float64

	TrainedAt time.Time
}

// Estimate returns the centered rating estimate for (userID, movieID).
// Unknown users or movies yield 0.
func (m *Model) Estimate(userID, movieID int) float64 {
	ui, ok := m.UserIndex[userID]
	if !ok {
		return 0
	}
	ii, ok := m.ItemIndex[movieID]
	if !ok {
		return 0
	}

	var dot float64
	pu, qi := m.P[ui], m.Q[ii]
	for f := 0; f < m.Factors; f++ {
		dot += pu[f] * qi[f]
	}

	bound := m.RatingMax - m.RatingMin
	if dot > bound {
		return bound
	}
	if dot < -bound {
		return -bound
	}
	return dot
}

// Predict returns the absolute rating estimate, clamped to the rating
// scale. Used for offline evaluation; the serving path de-centers with the
// live user mean instead.
func (m *Model) Predict(userID, movieID int) float64 {
	mean, ok := m.UserMeans[userID]
	if !ok {
		mean = m.GlobalMean
	}

	pred := mean + m.Estimate(userID, movieID)
	if pred > m.RatingMax {
		return m.RatingMax
	}
	if pred < m.RatingMin {
		return m.RatingMin
	}
	return pred
}
