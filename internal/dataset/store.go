// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

// Package dataset loads and serves the MovieLens-format rating dataset:
// user profiles, the movie catalog, rating events and the per-user ratings
// matrix derived from them.
//
// Raw files are ingested through an embedded in-memory DuckDB instance,
// which handles CSV dialect quirks (tab and pipe delimiters, latin-1 movie
// titles) and type coercion, then scanned into in-memory tables for
// request-time access.
//
// Loading is lazy and idempotent: the first accessor that needs data
// triggers it, and a failed load is retained and reported by every
// subsequent call. The user table is the only mutable state after load;
// it is guarded by an RWMutex so concurrent HTTP requests are safe.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/cinelens/cinelens/internal/config"
	"github.com/cinelens/cinelens/internal/metrics"
)

// Store holds the loaded dataset tables.
type Store struct {
	cfg    *config.DatasetConfig
	logger zerolog.Logger

	// loadMu guards the one-shot load. loaded is set even when the load
	// fails so the retained error is returned without retrying.
	loadMu  sync.Mutex
	loaded  bool
	loadErr error

	// Immutable after load.
	movies     map[int]Movie
	catalog    []Movie
	ratings    []Rating
	userEvents map[int][]Rating
	userMatrix map[int]map[int]float64

	genderEnc     *Encoder
	occupationEnc *Encoder

	// userMu guards the user table, the only state mutated after load.
	userMu    sync.RWMutex
	users     map[int]User
	userOrder []int

	// invalidate is called after every successful user append. Set once
	// during wiring, before the store serves requests.
	invalidate func()
}

// NewStore creates a store for the configured dataset files. No data is
// read until EnsureLoaded or the first data accessor is called.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(cfg *config.DatasetConfig, logger zerolog.Logger) *Store {
	return &Store{
		cfg:    cfg,
		logger: logger.With().Str("component", "dataset").Logger(),
	}
}

// SetInvalidationHook registers the callback invoked after each successful
// user append. Must be called before the store serves requests.
func (s *Store) SetInvalidationHook(fn func()) {
	s.invalidate = fn
}

// EnsureLoaded loads the dataset tables on first call. Subsequent calls
// return the retained outcome of the first attempt.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.loaded {
		return s.loadErr
	}

	start := time.Now()
	s.loadErr = s.load(ctx)
	s.loaded = true

	if s.loadErr != nil {
		s.logger.Error().Err(s.loadErr).Msg("dataset load failed")
		return s.loadErr
	}

	metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	metrics.DatasetUsers.Set(float64(len(s.users)))
	s.logger.Info().
		Int("users", len(s.users)).
		Int("movies", len(s.catalog)).
		Int("ratings", len(s.ratings)).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")

	return nil
}

// load ingests the raw files through DuckDB and builds the in-memory
// tables. Called once with loadMu held.
func (s *Store) load(ctx context.Context) error {
	threads := s.cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	connStr := fmt.Sprintf(":memory:?threads=%d&max_memory=%s", threads, s.cfg.MaxMemory)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return &StorageError{Resource: "ingest database", Err: err}
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("failed to close ingest database")
		}
	}()

	if err := s.loadRatings(ctx, db); err != nil {
		return err
	}
	if err := s.loadMovies(ctx, db); err != nil {
		return err
	}
	if err := s.loadUsers(ctx, db); err != nil {
		return err
	}

	s.buildMatrix()
	s.fitEncoders()
	return nil
}

// resolvePath joins a dataset file name with the configured directory.
func (s *Store) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.cfg.Dir, name)
}

// quoteSQL escapes a string for inclusion in a single-quoted SQL literal.
// DuckDB table functions do not accept bound parameters for file paths.
func quoteSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func (s *Store) loadRatings(ctx context.Context, db *sql.DB) error {
	path := s.resolvePath(s.cfg.RatingsFile)
	query := fmt.Sprintf(`
		SELECT user_id, movie_id, rating, ts
		FROM read_csv('%s',
			delim='\t',
			header=false,
			columns={'user_id': 'INTEGER', 'movie_id': 'INTEGER', 'rating': 'INTEGER', 'ts': 'BIGINT'})`,
		quoteSQL(path))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return &StorageError{Resource: "rating events", Path: path, Err: err}
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var r Rating
		var raw int
		if err := rows.Scan(&r.UserID, &r.MovieID, &raw, &r.Timestamp); err != nil {
			return &StorageError{Resource: "rating events", Path: path, Err: err}
		}
		r.Rating = float64(raw)
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return &StorageError{Resource: "rating events", Path: path, Err: err}
	}

	s.ratings = ratings
	return nil
}

func (s *Store) loadMovies(ctx context.Context, db *sql.DB) error {
	path := s.resolvePath(s.cfg.MoviesFile)
	// Titles are latin-1 encoded. The 19 trailing genre flag columns are
	// kept on the catalog entry in GenreNames order.
	query := fmt.Sprintf(`
		SELECT movie_id, title,
			genre_unknown, genre_action, genre_adventure, genre_animation,
			genre_childrens, genre_comedy, genre_crime, genre_documentary,
			genre_drama, genre_fantasy, genre_film_noir, genre_horror,
			genre_musical, genre_mystery, genre_romance, genre_sci_fi,
			genre_thriller, genre_war, genre_western
		FROM read_csv('%s',
			delim='|',
			header=false,
			encoding='latin-1',
			columns={
				'movie_id': 'INTEGER', 'title': 'VARCHAR',
				'release_date': 'VARCHAR', 'video_release_date': 'VARCHAR', 'imdb_url': 'VARCHAR',
				'genre_unknown': 'TINYINT', 'genre_action': 'TINYINT', 'genre_adventure': 'TINYINT',
				'genre_animation': 'TINYINT', 'genre_childrens': 'TINYINT', 'genre_comedy': 'TINYINT',
				'genre_crime': 'TINYINT', 'genre_documentary': 'TINYINT', 'genre_drama': 'TINYINT',
				'genre_fantasy': 'TINYINT', 'genre_film_noir': 'TINYINT', 'genre_horror': 'TINYINT',
				'genre_musical': 'TINYINT', 'genre_mystery': 'TINYINT', 'genre_romance': 'TINYINT',
				'genre_sci_fi': 'TINYINT', 'genre_thriller': 'TINYINT', 'genre_war': 'TINYINT',
				'genre_western': 'TINYINT'})`,
		quoteSQL(path))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return &StorageError{Resource: "movie catalog", Path: path, Err: err}
	}
	defer rows.Close()

	movies := make(map[int]Movie)
	var catalog []Movie
	for rows.Next() {
		var m Movie
		dest := make([]any, 0, 2+GenreCount)
		dest = append(dest, &m.ID, &m.Title)
		for i := range m.Genres {
			dest = append(dest, &m.Genres[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return &StorageError{Resource: "movie catalog", Path: path, Err: err}
		}
		movies[m.ID] = m
		catalog = append(catalog, m)
	}
	if err := rows.Err(); err != nil {
		return &StorageError{Resource: "movie catalog", Path: path, Err: err}
	}

	s.movies = movies
	s.catalog = catalog
	return nil
}

func (s *Store) loadUsers(ctx context.Context, db *sql.DB) error {
	path := s.resolvePath(s.cfg.UsersFile)
	query := fmt.Sprintf(`
		SELECT user_id, age, gender, occupation, zip_code
		FROM read_csv('%s',
			delim='|',
			header=false,
			columns={'user_id': 'INTEGER', 'age': 'INTEGER', 'gender': 'VARCHAR', 'occupation': 'VARCHAR', 'zip_code': 'VARCHAR'})`,
		quoteSQL(path))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return &StorageError{Resource: "user profiles", Path: path, Err: err}
	}
	defer rows.Close()

	users := make(map[int]User)
	var order []int
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Age, &u.Gender, &u.Occupation, &u.ZipCode); err != nil {
			return &StorageError{Resource: "user profiles", Path: path, Err: err}
		}
		users[u.ID] = u
		order = append(order, u.ID)
	}
	if err := rows.Err(); err != nil {
		return &StorageError{Resource: "user profiles", Path: path, Err: err}
	}

	s.users = users
	s.userOrder = order
	return nil
}

// buildMatrix derives the per-user ratings matrix and event lists.
func (s *Store) buildMatrix() {
	matrix := make(map[int]map[int]float64)
	events := make(map[int][]Rating)
	for _, r := range s.ratings {
		row, ok := matrix[r.UserID]
		if !ok {
			row = make(map[int]float64)
			matrix[r.UserID] = row
		}
		row[r.MovieID] = r.Rating
		events[r.UserID] = append(events[r.UserID], r)
	}
	s.userMatrix = matrix
	s.userEvents = events
}

// fitEncoders freezes the categorical vocabularies on the initial user
// table. Later user additions validate against these and never extend them.
func (s *Store) fitEncoders() {
	genders := make([]string, 0, len(s.userOrder))
	occupations := make([]string, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		u := s.users[id]
		genders = append(genders, u.Gender)
		occupations = append(occupations, u.Occupation)
	}

	s.genderEnc = NewEncoder("gender")
	s.genderEnc.Fit(genders)
	s.occupationEnc = NewEncoder("occupation")
	s.occupationEnc.Fit(occupations)

	// Derived codes are stored on the profile so cold-start feature
	// vectors need no per-request encoding.
	for id, u := range s.users {
		gc, _ := s.genderEnc.Encode(u.Gender)
		oc, _ := s.occupationEnc.Encode(u.Occupation)
		u.GenderCode = gc
		u.OccupationCode = oc
		s.users[id] = u
	}
}

// GenderEncoder returns the gender vocabulary encoder.
func (s *Store) GenderEncoder() *Encoder {
	return s.genderEnc
}

// OccupationEncoder returns the occupation vocabulary encoder.
func (s *Store) OccupationEncoder() *Encoder {
	return s.occupationEnc
}

// UserExists reports whether a user profile exists.
func (s *Store) UserExists(id int) bool {
	s.userMu.RLock()
	defer s.userMu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// User returns the profile for id.
func (s *Store) User(id int) (User, bool) {
	s.userMu.RLock()
	defer s.userMu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Users returns a snapshot of all profiles in table order: the dataset's
// order followed by runtime additions in insertion order.
func (s *Store) Users() []User {
	s.userMu.RLock()
	defer s.userMu.RUnlock()

	out := make([]User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out
}

// Movies returns the catalog in catalog order. The returned slice is
// shared and must not be modified.
func (s *Store) Movies() []Movie {
	return s.catalog
}

// MovieTitle resolves a movie ID to its title.
func (s *Store) MovieTitle(id int) (string, bool) {
	m, ok := s.movies[id]
	return m.Title, ok
}

// UserRatings returns a copy of the user's row in the ratings matrix, or
// nil if the user has no rating events.
func (s *Store) UserRatings(id int) map[int]float64 {
	row, ok := s.userMatrix[id]
	if !ok {
		return nil
	}
	out := make(map[int]float64, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// UserRatingEvents returns the user's rating events in dataset order. The
// returned slice is shared and must not be modified.
func (s *Store) UserRatingEvents(id int) []Rating {
	return s.userEvents[id]
}

// HasRatings reports whether the user has any rating events. Users added
// at runtime always report false, which routes them to the cold-start path.
func (s *Store) HasRatings(id int) bool {
	_, ok := s.userMatrix[id]
	return ok
}

// Counts returns the table sizes.
func (s *Store) Counts() (users, movies, ratings int) {
	s.userMu.RLock()
	users = len(s.users)
	s.userMu.RUnlock()
	return users, len(s.catalog), len(s.ratings)
}
