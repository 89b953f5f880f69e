// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cinelens/cinelens/internal/dataset"
	"github.com/cinelens/cinelens/internal/models"
	"github.com/cinelens/cinelens/internal/recommend"
	"github.com/cinelens/cinelens/internal/validation"
)

// requestTimeout bounds handler work beyond the server-level timeouts.
const requestTimeout = 10 * time.Second

// Handler serves the recommendation API endpoints.
type Handler struct {
	store    *dataset.Store
	engine   *recommend.Engine
	defaultN int
	maxN     int
	version  string
}

// NewHandler creates the API handler.
func NewHandler(store *dataset.Store, engine *recommend.Engine, defaultN, maxN int, version string) *Handler {
	return &Handler{
		store:    store,
		engine:   engine,
		defaultN: defaultN,
		maxN:     maxN,
		version:  version,
	}
}

// ensureLoaded triggers the lazy dataset load and maps a failure to a
// 500 response. Returns false if the response has been written.
func (h *Handler) ensureLoaded(ctx context.Context, w http.ResponseWriter) bool {
	if err := h.store.EnsureLoaded(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Dataset unavailable", err)
		return false
	}
	return true
}

// AddUser handles POST /api/v1/users.
// Registers an in-memory user profile for cold-start recommendations.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req models.AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondErrorDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		})
		return
	}

	if !h.ensureLoaded(ctx, w) {
		return
	}

	err := h.store.AddUser(req.UserID, req.Age, req.Gender, req.Occupation, req.ZipCode)
	switch {
	case err == nil:
	case errors.Is(err, dataset.ErrUserExists):
		respondError(w, http.StatusBadRequest, "USER_EXISTS", "User ID is already taken", nil)
		return
	default:
		var valErr *dataset.ValidationError
		if errors.As(err, &valErr) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add user", err)
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   models.AddUserResponse{UserID: req.UserID, Status: "created"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Recommendations handles GET /api/v1/recommendations/user/{userID}.
// The n query parameter defaults to the configured count and is capped
// at the configured maximum.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, ok := pathInt(w, r, "userID")
	if !ok {
		return
	}

	n := h.defaultN
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "n must be a positive integer", nil)
			return
		}
		n = parsed
	}
	if n > h.maxN {
		n = h.maxN
	}

	if !h.ensureLoaded(ctx, w) {
		return
	}

	result, err := h.engine.Recommend(ctx, userID, n)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	recs := make([]models.Recommendation, 0, len(result))
	for _, s := range result {
		recs = append(recs, models.Recommendation{Title: s.Title, Score: s.Score})
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.RecommendationsResponse{UserID: userID, Recommendations: recs},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// RatingHistory handles GET /api/v1/users/{userID}/ratings.
func (h *Handler) RatingHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, ok := pathInt(w, r, "userID")
	if !ok {
		return
	}

	if !h.ensureLoaded(ctx, w) {
		return
	}

	history, err := h.engine.RatedMovies(ctx, userID)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	movies := make([]models.RatedMovie, 0, len(history))
	for _, m := range history {
		movies = append(movies, models.RatedMovie{Title: m.Title, Rating: m.Rating})
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.RatingHistoryResponse{UserID: userID, Movies: movies},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HealthLive handles GET /api/v1/health/live.
// Liveness: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.HealthResponse{Status: "alive", Version: h.version},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles GET /api/v1/health/ready.
// Readiness: the dataset is loaded and recommendations can be served.
// The check itself triggers the lazy load.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.store.EnsureLoaded(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Metadata: models.Metadata{
				Timestamp: time.Now(),
			},
			Error: &models.APIError{
				Code:    "STORAGE_ERROR",
				Message: "Dataset unavailable",
			},
		})
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.HealthResponse{Status: "ready", Version: h.version},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// respondEngineError maps engine errors to HTTP responses.
func (h *Handler) respondEngineError(w http.ResponseWriter, err error) {
	var notFound *recommend.NotFoundError
	if errors.As(err, &notFound) {
		respondError(w, http.StatusNotFound, "USER_NOT_FOUND", notFound.Error(), nil)
		return
	}

	var storageErr *dataset.StorageError
	if errors.As(err, &storageErr) {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Dataset unavailable", err)
		return
	}

	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to serve request", err)
}

// pathInt parses an integer URL parameter, writing a 400 on failure.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name, nil)
		return 0, false
	}
	return value, true
}
