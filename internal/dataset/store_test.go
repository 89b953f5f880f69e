// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cinelens/cinelens/internal/config"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// movieRow builds a catalog line with the 19 trailing genre flags.
func movieRow(id int, title string) string {
	return strconv.Itoa(id) + "|" + title + "|01-Jan-1995||http://example.invalid" + strings.Repeat("|0", 19)
}

// writeFixture lays out a small MovieLens-format dataset and returns its
// config. Users 1-3 have ratings; user 4 has none (cold start).
func writeFixture(t *testing.T) *config.DatasetConfig {
	t.Helper()
	dir := t.TempDir()

	users := "1|24|M|technician|85711\n" +
		"2|53|F|other|94043\n" +
		"3|23|M|writer|32067\n" +
		"4|33|F|other|15213\n"

	// "Le Confessionnal" carries a latin-1 byte (0xE9) in the real catalog.
	movies := movieRow(1, "Toy Story (1995)") + "\n" +
		movieRow(2, "GoldenEye (1995)") + "\n" +
		string(append([]byte("3|Confessionnal, Le (Conf"), 0xE9, 's', 's', 'i', 'o', 'n', 'a', 'l', ',', ' ', 'T', 'h', 'e', ')', ' ', '(', '1', '9', '9', '5', ')')) +
		"|01-Jan-1995||http://example.invalid|0|0|0|0|0|0|0|0|1|0|0|0|0|0|0|0|0|0|0\n" +
		movieRow(4, "Get Shorty (1995)") + "\n"

	ratings := "1\t1\t5\t874965758\n" +
		"1\t2\t3\t874965759\n" +
		"2\t1\t4\t876893171\n" +
		"2\t3\t5\t876893172\n" +
		"3\t2\t2\t878542960\n"

	files := map[string]string{
		"u.user": users,
		"u.item": movies,
		"u.data": ratings,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	return &config.DatasetConfig{
		Dir:         dir,
		RatingsFile: "u.data",
		MoviesFile:  "u.item",
		UsersFile:   "u.user",
		MaxMemory:   "256MB",
	}
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(writeFixture(t), testLogger())
	if err := s.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded() error: %v", err)
	}
	return s
}

func TestEnsureLoadedCounts(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	users, movies, ratings := s.Counts()
	if users != 4 || movies != 4 || ratings != 5 {
		t.Errorf("Counts() = %d, %d, %d; want 4, 4, 5", users, movies, ratings)
	}
}

func TestEnsureLoadedIdempotent(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	for i := 0; i < 3; i++ {
		if err := s.EnsureLoaded(context.Background()); err != nil {
			t.Fatalf("repeat EnsureLoaded() error: %v", err)
		}
	}
	users, _, _ := s.Counts()
	if users != 4 {
		t.Errorf("repeated loads changed user count to %d", users)
	}
}

func TestEnsureLoadedRetainsFailure(t *testing.T) {
	t.Parallel()

	cfg := writeFixture(t)
	cfg.RatingsFile = "missing.data"
	s := NewStore(cfg, testLogger())

	err1 := s.EnsureLoaded(context.Background())
	if err1 == nil {
		t.Fatal("expected load failure for missing ratings file")
	}
	var serr *StorageError
	if !errors.As(err1, &serr) {
		t.Fatalf("error type = %T, want *StorageError", err1)
	}

	// The failure is retained, not retried.
	err2 := s.EnsureLoaded(context.Background())
	if !errors.Is(err2, err1) && err2.Error() != err1.Error() {
		t.Errorf("second call returned different error: %v vs %v", err2, err1)
	}
}

func TestLatin1TitleDecoded(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	title, ok := s.MovieTitle(3)
	if !ok {
		t.Fatal("movie 3 missing")
	}
	if want := "Confessionnal, Le (Conféssional, The) (1995)"; title != want {
		t.Errorf("title = %q, want %q", title, want)
	}
}

func TestGenreFlagsParsed(t *testing.T) {
	t.Parallel()

	// Only movie 3 in the fixture carries a genre flag (Drama).
	drama := -1
	for i, name := range GenreNames {
		if name == "Drama" {
			drama = i
		}
	}
	if drama == -1 {
		t.Fatal("Drama missing from GenreNames")
	}

	s := loadedStore(t)
	for _, m := range s.Movies() {
		for i, flag := range m.Genres {
			var want uint8
			if m.ID == 3 && i == drama {
				want = 1
			}
			if flag != want {
				t.Errorf("movie %d genre %q = %d, want %d", m.ID, GenreNames[i], flag, want)
			}
		}
	}
}

func TestCatalogOrder(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	movies := s.Movies()
	for i, m := range movies {
		if m.ID != i+1 {
			t.Errorf("catalog position %d holds movie %d, want %d", i, m.ID, i+1)
		}
	}
}

func TestUserRatingsMatrix(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)

	row := s.UserRatings(1)
	if len(row) != 2 || row[1] != 5 || row[2] != 3 {
		t.Errorf("user 1 ratings = %v, want map[1:5 2:3]", row)
	}

	// The returned row is a copy.
	row[1] = 99
	if s.UserRatings(1)[1] != 5 {
		t.Error("mutating the returned row must not affect the store")
	}

	if s.UserRatings(4) != nil {
		t.Error("user without ratings should have nil row")
	}
}

func TestHasRatings(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	if !s.HasRatings(1) {
		t.Error("user 1 has rating events")
	}
	if s.HasRatings(4) {
		t.Error("user 4 has no rating events")
	}
	if s.HasRatings(999) {
		t.Error("unknown user has no rating events")
	}
}

func TestEncodersFittedAtLoad(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)

	genders := s.GenderEncoder().Classes()
	if len(genders) != 2 || genders[0] != "F" || genders[1] != "M" {
		t.Errorf("gender classes = %v, want [F M]", genders)
	}

	occupations := s.OccupationEncoder().Classes()
	want := []string{"other", "technician", "writer"}
	if len(occupations) != len(want) {
		t.Fatalf("occupation classes = %v, want %v", occupations, want)
	}
	for i := range want {
		if occupations[i] != want[i] {
			t.Errorf("occupation class[%d] = %q, want %q", i, occupations[i], want[i])
		}
	}

	u, _ := s.User(2)
	if u.GenderCode != 0 {
		t.Errorf("user 2 gender code = %d, want 0 (F)", u.GenderCode)
	}
	if u.OccupationCode != 0 {
		t.Errorf("user 2 occupation code = %d, want 0 (other)", u.OccupationCode)
	}
}

func TestUsersSnapshotOrder(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	users := s.Users()
	if len(users) != 4 {
		t.Fatalf("Users() returned %d profiles, want 4", len(users))
	}
	for i, u := range users {
		if u.ID != i+1 {
			t.Errorf("position %d holds user %d, want %d", i, u.ID, i+1)
		}
	}
}

func TestUserRatingEventsOrder(t *testing.T) {
	t.Parallel()

	s := loadedStore(t)
	events := s.UserRatingEvents(2)
	if len(events) != 2 {
		t.Fatalf("user 2 has %d events, want 2", len(events))
	}
	if events[0].MovieID != 1 || events[1].MovieID != 3 {
		t.Errorf("events out of dataset order: %v", events)
	}
}
