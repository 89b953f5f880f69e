// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package services

import (
	"context"

	"github.com/rs/zerolog"
)

// Loader is the subset of the dataset store used by the warmup service.
type Loader interface {
	EnsureLoaded(ctx context.Context) error
}

// DatasetWarmupService triggers the lazy dataset load at startup so the
// first HTTP request does not pay the ingest cost. A load failure is
// retained by the store and reported by the readiness endpoint, so the
// service logs it and stays up rather than crash-looping: restarting
// cannot fix a missing dataset file.
type DatasetWarmupService struct {
	loader Loader
	logger zerolog.Logger
}

// NewDatasetWarmupService creates the warmup service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDatasetWarmupService(loader Loader, logger zerolog.Logger) *DatasetWarmupService {
	return &DatasetWarmupService{
		loader: loader,
		logger: logger.With().Str("component", "warmup").Logger(),
	}
}

// Serve implements suture.Service.
func (s *DatasetWarmupService) Serve(ctx context.Context) error {
	if err := s.loader.EnsureLoaded(ctx); err != nil {
		s.logger.Error().Err(err).Msg("dataset warmup failed")
	} else {
		s.logger.Info().Msg("dataset warmed up")
	}

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in event logs.
func (s *DatasetWarmupService) String() string {
	return "dataset-warmup"
}
