// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/cinelens/cinelens/internal/dataset"
)

// RatedMovies returns the user's rating history with resolved titles,
// best rated first. Equal ratings keep dataset order. Users without
// history get an empty slice, unknown users a *NotFoundError.
func (e *Engine) RatedMovies(ctx context.Context, userID int) ([]RatedMovie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !e.provider.UserExists(userID) {
		return nil, &NotFoundError{UserID: userID}
	}

	events := e.provider.UserRatingEvents(userID)
	history := make([]RatedMovie, 0, len(events))
	for _, ev := range events {
		title, ok := e.provider.MovieTitle(ev.MovieID)
		if !ok {
			return nil, &dataset.StorageError{
				Resource: "movie title",
				Err:      fmt.Errorf("movie %d missing from catalog", ev.MovieID),
			}
		}
		history = append(history, RatedMovie{MovieID: ev.MovieID, Title: title, Rating: ev.Rating})
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Rating > history[j].Rating
	})

	return history, nil
}
