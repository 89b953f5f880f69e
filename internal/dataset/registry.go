// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package dataset

import "github.com/cinelens/cinelens/internal/metrics"

// AddUser validates and appends a user profile. The profile exists for the
// lifetime of the process only; nothing is written back to the dataset
// files and no rating events are created for the new user.
//
// Gender and occupation are validated against the vocabularies frozen at
// load; on failure the table is untouched and a *ValidationError is
// returned. A taken ID fails with ErrUserExists. The duplicate check runs
// under the write lock, so two concurrent adds of the same ID cannot both
// succeed.
//
// After a successful append the registered invalidation hook runs: a new
// profile can change the demographic neighborhood of any cold-start
// request, so cached results for every user are stale.
func (s *Store) AddUser(id, age int, gender, occupation, zipCode string) error {
	genderCode, err := s.genderEnc.Encode(gender)
	if err != nil {
		return err
	}
	occupationCode, err := s.occupationEnc.Encode(occupation)
	if err != nil {
		return err
	}

	s.userMu.Lock()
	if _, ok := s.users[id]; ok {
		s.userMu.Unlock()
		return ErrUserExists
	}

	s.users[id] = User{
		ID:             id,
		Age:            age,
		Gender:         gender,
		Occupation:     occupation,
		ZipCode:        zipCode,
		GenderCode:     genderCode,
		OccupationCode: occupationCode,
	}
	s.userOrder = append(s.userOrder, id)
	total := len(s.users)
	s.userMu.Unlock()

	metrics.UsersAddedTotal.Inc()
	metrics.DatasetUsers.Set(float64(total))
	s.logger.Info().Int("user_id", id).Int("users", total).Msg("user added")

	if s.invalidate != nil {
		s.invalidate()
	}
	return nil
}
