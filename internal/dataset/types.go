// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package dataset

// User is a demographic profile row. GenderCode and OccupationCode are
// derived through the encoders frozen at dataset load.
type User struct {
	ID             int
	Age            int
	Gender         string
	Occupation     string
	ZipCode        string
	GenderCode     int
	OccupationCode int
}

// GenreCount is the number of one-hot genre flag columns in the catalog
// file.
const GenreCount = 19

// GenreNames lists the genre flag columns in file order.
var GenreNames = [GenreCount]string{
	"unknown", "Action", "Adventure", "Animation", "Children's",
	"Comedy", "Crime", "Documentary", "Drama", "Fantasy",
	"Film-Noir", "Horror", "Musical", "Mystery", "Romance",
	"Sci-Fi", "Thriller", "War", "Western",
}

// Movie is a catalog entry. Genres holds the one-hot genre flags in
// GenreNames order.
type Movie struct {
	ID     int
	Title  string
	Genres [GenreCount]uint8
}

// Rating is a single rating event.
type Rating struct {
	UserID    int
	MovieID   int
	Rating    float64
	Timestamp int64
}
