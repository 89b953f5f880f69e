// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package dataset

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestAddUser(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)

	invalidated := 0
	s.SetInvalidationHook(func() { invalidated++ })

	if err := s.AddUser(1001, 29, "F", "writer", "10001"); err != nil {
		t.Fatalf("AddUser() error: %v", err)
	}

	u, ok := s.User(1001)
	if !ok {
		t.Fatal("added user not found")
	}
	if u.Age != 29 || u.Gender != "F" || u.Occupation != "writer" || u.ZipCode != "10001" {
		t.Errorf("stored profile = %+v", u)
	}
	if u.GenderCode != 0 {
		t.Errorf("gender code = %d, want 0 (F)", u.GenderCode)
	}
	if invalidated != 1 {
		t.Errorf("invalidation hook ran %d times, want 1", invalidated)
	}

	// The new user appears at the end of the snapshot order.
	users := s.Users()
	if users[len(users)-1].ID != 1001 {
		t.Errorf("last user = %d, want 1001", users[len(users)-1].ID)
	}
}

func TestAddUserHasNoRatings(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	if err := s.AddUser(1002, 40, "M", "other", "02139"); err != nil {
		t.Fatal(err)
	}
	if s.HasRatings(1002) {
		t.Error("added user must have no rating events")
	}
}

func TestAddUserRejectsUnknownGender(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	invalidated := 0
	s.SetInvalidationHook(func() { invalidated++ })

	err := s.AddUser(1003, 30, "X", "writer", "10001")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if !strings.Contains(err.Error(), "F, M") {
		t.Errorf("message %q does not enumerate genders", err.Error())
	}

	// Failed validation leaves everything untouched.
	if s.UserExists(1003) {
		t.Error("user table mutated on validation failure")
	}
	if invalidated != 0 {
		t.Error("invalidation hook must not run on failure")
	}
}

func TestAddUserRejectsUnknownOccupation(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	err := s.AddUser(1004, 30, "M", "astronaut", "10001")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Field != "occupation" {
		t.Errorf("field = %q, want occupation", verr.Field)
	}
	if s.UserExists(1004) {
		t.Error("user table mutated on validation failure")
	}
}

func TestAddUserDuplicateID(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	if err := s.AddUser(1005, 30, "M", "writer", "10001"); err != nil {
		t.Fatal(err)
	}

	err := s.AddUser(1005, 31, "F", "other", "10002")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate add error = %v, want ErrUserExists", err)
	}

	// The original profile is untouched.
	u, _ := s.User(1005)
	if u.Age != 30 || u.Gender != "M" {
		t.Errorf("original profile overwritten: %+v", u)
	}
}

func TestAddUserConcurrentSameID(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.AddUser(2000, 25, "M", "writer", "99999")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrUserExists) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d concurrent adds of the same ID succeeded, want exactly 1", succeeded)
	}
}
