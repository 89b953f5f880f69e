// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cinelens/cinelens/internal/dataset"
)

// featureCount is the dimension of the demographic vector:
// age, gender code, occupation code.
const featureCount = 3

// neighbor pairs a candidate user with its similarity to the target.
type neighbor struct {
	userID int
	sim    float64
}

// recommendCold recommends for a user with no rating history. The
// user's demographic vector is compared against every other profile
// using cosine similarity over z-scored features, and the nearest
// neighbors vote with their own ratings. When the user table holds no
// other profile to compare against, the global popularity ranking is
// used instead.
//
// Standardization is recomputed over the current user table on every
// call, so runtime additions shift the feature space immediately.
func (e *Engine) recommendCold(ctx context.Context, userID, n int) ([]ScoredMovie, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	users := e.provider.Users()
	vectors := standardize(users)

	var target []float64
	for i, u := range users {
		if u.ID == userID {
			target = vectors[i]
			break
		}
	}
	if target == nil {
		// Existence was checked before routing; a missing row here
		// means the table changed underneath us.
		return nil, "", &NotFoundError{UserID: userID}
	}

	neighbors := make([]neighbor, 0, len(users))
	for i, u := range users {
		if u.ID == userID {
			continue
		}
		neighbors = append(neighbors, neighbor{userID: u.ID, sim: cosineSimilarity(target, vectors[i])})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].sim > neighbors[j].sim
	})
	if len(neighbors) > e.cfg.Neighbors {
		neighbors = neighbors[:e.cfg.Neighbors]
	}

	// The popularity fallback covers the degenerate population with no
	// candidate neighbors at all. Neighbors that exist but have rated
	// nothing still yield an empty result, not a fallback.
	var scores map[int]float64
	path := "cold"
	if len(neighbors) == 0 {
		scores = e.popularityScores()
		path = "cold_fallback"
	} else {
		scores = e.neighborScores(neighbors)
	}

	rated := e.provider.UserRatings(userID)
	for id := range rated {
		delete(scores, id)
	}

	result, err := e.resolveScores(scores, n)
	if err != nil {
		return nil, "", err
	}
	return result, path, nil
}

// neighborScores averages each item's rating over the neighbors that
// rated it.
func (e *Engine) neighborScores(neighbors []neighbor) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, nb := range neighbors {
		for itemID, rating := range e.provider.UserRatings(nb.userID) {
			sums[itemID] += rating
			counts[itemID]++
		}
	}

	scores := make(map[int]float64, len(sums))
	for itemID, sum := range sums {
		scores[itemID] = sum / float64(counts[itemID])
	}
	return scores
}

// popularityScores averages each item's rating over the whole table.
func (e *Engine) popularityScores() map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, u := range e.provider.Users() {
		for _, ev := range e.provider.UserRatingEvents(u.ID) {
			sums[ev.MovieID] += ev.Rating
			counts[ev.MovieID]++
		}
	}

	scores := make(map[int]float64, len(sums))
	for itemID, sum := range sums {
		scores[itemID] = sum / float64(counts[itemID])
	}
	return scores
}

// resolveScores orders scored items by score descending, resolves
// titles, and truncates to n. A score for an item missing from the
// catalog is a storage fault.
func (e *Engine) resolveScores(scores map[int]float64, n int) ([]ScoredMovie, error) {
	scored := make([]ScoredMovie, 0, len(scores))
	for _, m := range e.provider.Movies() {
		score, ok := scores[m.ID]
		if !ok {
			continue
		}
		scored = append(scored, ScoredMovie{MovieID: m.ID, Title: m.Title, Score: score})
	}

	if len(scored) != len(scores) {
		seen := make(map[int]struct{}, len(scored))
		for _, s := range scored {
			seen[s.MovieID] = struct{}{}
		}
		for id := range scores {
			if _, ok := seen[id]; !ok {
				return nil, &dataset.StorageError{
					Resource: "movie title",
					Err:      fmt.Errorf("movie %d missing from catalog", id),
				}
			}
		}
	}

	return topN(scored, n), nil
}

// standardize z-scores the demographic features over the given
// profiles. A feature with zero variance maps to zero for every user.
func standardize(users []dataset.User) [][]float64 {
	raw := make([][]float64, len(users))
	for i, u := range users {
		raw[i] = []float64{float64(u.Age), float64(u.GenderCode), float64(u.OccupationCode)}
	}
	if len(raw) == 0 {
		return raw
	}

	var means, stds [featureCount]float64
	for f := 0; f < featureCount; f++ {
		var sum float64
		for _, v := range raw {
			sum += v[f]
		}
		means[f] = sum / float64(len(raw))

		var sq float64
		for _, v := range raw {
			d := v[f] - means[f]
			sq += d * d
		}
		stds[f] = math.Sqrt(sq / float64(len(raw)))
	}

	for _, v := range raw {
		for f := 0; f < featureCount; f++ {
			if stds[f] == 0 {
				v[f] = 0
				continue
			}
			v[f] = (v[f] - means[f]) / stds[f]
		}
	}
	return raw
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero vectors have zero similarity to everything.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
