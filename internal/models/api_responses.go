// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

// Package models defines the HTTP API request and response types.
package models

import "time"

// APIResponse is the standardized response wrapper used by all endpoints.
//
// Status is "success" or "error". Data carries the payload on success;
// Error carries the failure details on error.
//
//	{
//	  "status": "success",
//	  "data": {"recommendations": [...]},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z", "query_time_ms": 3}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
// QueryTimeMS is 0 and Cached true when served from the result cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a structured error payload.
//
// Error codes used by the service:
//   - VALIDATION_ERROR: invalid request parameters or unknown categorical value
//   - USER_NOT_FOUND: the requested user does not exist
//   - USER_EXISTS: attempt to add a user with a taken ID
//   - STORAGE_ERROR: dataset or model artifact unavailable
//   - INTERNAL_ERROR: unexpected failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AddUserRequest is the body of POST /api/v1/users.
type AddUserRequest struct {
	UserID     int    `json:"user_id" validate:"gt=0"`
	Age        int    `json:"age" validate:"gte=1,lte=120"`
	Gender     string `json:"gender" validate:"required"`
	Occupation string `json:"occupation" validate:"required"`
	ZipCode    string `json:"zip_code" validate:"required"`
}

// AddUserResponse confirms a successful user registration.
type AddUserResponse struct {
	UserID int    `json:"user_id"`
	Status string `json:"status"`
}

// Recommendation is one ranked entry in a recommendation list.
type Recommendation struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// RecommendationsResponse is the payload of GET /api/v1/recommendations/user/{userID}.
type RecommendationsResponse struct {
	UserID          int              `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RatedMovie is one entry in a user's rating history.
type RatedMovie struct {
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
}

// RatingHistoryResponse is the payload of GET /api/v1/users/{userID}/ratings.
type RatingHistoryResponse struct {
	UserID int          `json:"user_id"`
	Movies []RatedMovie `json:"movies"`
}

// HealthResponse is the payload of the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
