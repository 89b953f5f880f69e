// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package recommend

import (
	"fmt"

	"github.com/cinelens/cinelens/internal/dataset"
)

// ScoredMovie is a single recommendation: a resolved title and its
// predicted score. Result slices are ordered by score descending; on
// equal scores the later catalog entry comes first.
type ScoredMovie struct {
	MovieID int     `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// RatedMovie is one entry of a user's rating history.
type RatedMovie struct {
	MovieID int     `json:"movie_id"`
	Title   string  `json:"title"`
	Rating  float64 `json:"rating"`
}

// Provider supplies dataset access to the engine. It is implemented by
// dataset.Store; the interface keeps the engine testable without a
// loaded dataset.
type Provider interface {
	// UserExists reports whether a user profile exists.
	UserExists(id int) bool

	// User returns the profile for id.
	User(id int) (dataset.User, bool)

	// Users returns all profiles in table order.
	Users() []dataset.User

	// Movies returns the catalog in catalog order.
	Movies() []dataset.Movie

	// MovieTitle resolves a movie ID to its title.
	MovieTitle(id int) (string, bool)

	// UserRatings returns the user's row of the ratings matrix, or nil.
	UserRatings(id int) map[int]float64

	// UserRatingEvents returns the user's rating events in dataset order.
	UserRatingEvents(id int) []dataset.Rating

	// HasRatings reports whether the user has any rating events.
	HasRatings(id int) bool
}

// TrainedPredictor scores a (user, item) pair on the centered rating
// scale. The engine de-centers by adding the user's live mean, so
// implementations must not add any baseline themselves.
type TrainedPredictor interface {
	Estimate(userID, itemID int) float64
}

// Config holds the engine tuning knobs.
type Config struct {
	// Neighbors is the cold-start neighborhood size.
	Neighbors int

	// CacheCapacity bounds the result cache entry count.
	CacheCapacity int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Neighbors:     50,
		CacheCapacity: 128,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Neighbors <= 0 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.CacheCapacity)
	}
	return nil
}
