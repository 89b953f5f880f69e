// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

// Package main is the offline training command for CineLens.
//
// The trainer loads the rating dataset, selects factorization
// hyperparameters by grid search with k-fold cross-validation, trains the
// winning configuration on the full data, and writes the model artifact
// the server loads at startup.
//
//	./trainer -folds 5 -out /data/models/svd.gob.gz
//
// Pass -quick to skip the grid search and train the default configuration,
// which is useful for CI and local iteration.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinelens/cinelens/internal/config"
	"github.com/cinelens/cinelens/internal/dataset"
	"github.com/cinelens/cinelens/internal/logging"
	"github.com/cinelens/cinelens/internal/svd"
)

func main() {
	var (
		out   = flag.String("out", "", "model artifact path (default: dataset.model_path from configuration)")
		folds = flag.Int("folds", 5, "cross-validation folds for the grid search")
		quick = flag.Bool("quick", false, "skip the grid search and train the default configuration")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	outPath := *out
	if outPath == "" {
		outPath = cfg.Dataset.ModelPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := dataset.NewStore(&cfg.Dataset, logging.Logger())
	if err := store.EnsureLoaded(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load dataset")
	}

	samples := trainingSamples(store)
	users, movies, ratings := store.Counts()
	logging.Info().
		Int("users", users).
		Int("movies", movies).
		Int("ratings", ratings).
		Msg("Dataset loaded")

	best := svd.DefaultConfig()
	if *quick {
		logging.Info().Msg("Quick mode: training default configuration")
	} else {
		results, err := svd.GridSearch(ctx, samples, parameterGrid(), *folds)
		if err != nil {
			logging.Fatal().Err(err).Msg("Grid search failed")
		}
		for _, r := range results {
			logging.Info().
				Int("factors", r.Config.Factors).
				Int("epochs", r.Config.Epochs).
				Float64("lr", r.Config.LearningRate).
				Float64("reg", r.Config.Regularization).
				Float64("rmse", r.Metrics.RMSE).
				Float64("mae", r.Metrics.MAE).
				Msg("Grid search candidate")
		}
		best = results[0].Config
		logging.Info().
			Int("factors", best.Factors).
			Int("epochs", best.Epochs).
			Float64("rmse", results[0].Metrics.RMSE).
			Msg("Best configuration selected")
	}

	// Final holdout evaluation gives the metrics recorded in the artifact;
	// the shipped model is then trained on the full data.
	holdout, err := svd.CrossValidate(ctx, samples, best, *folds)
	if err != nil {
		logging.Fatal().Err(err).Msg("Holdout evaluation failed")
	}

	start := time.Now()
	model, err := svd.Train(ctx, samples, best)
	if err != nil {
		logging.Fatal().Err(err).Msg("Training failed")
	}
	trainDur := time.Since(start)

	meta := svd.Metadata{
		TrainedAt:          start,
		SampleCount:        len(samples),
		TrainingDurationMS: trainDur.Milliseconds(),
		Config:             best,
		Metrics:            holdout,
	}
	if err := svd.Save(outPath, model, meta); err != nil {
		logging.Fatal().Err(err).Str("path", outPath).Msg("Failed to write model artifact")
	}

	logging.Info().
		Str("path", outPath).
		Dur("training_time", trainDur).
		Float64("rmse", holdout.RMSE).
		Float64("mae", holdout.MAE).
		Msg("Model artifact written")
}

// trainingSamples flattens the store's rating events into training samples.
func trainingSamples(store *dataset.Store) []svd.Rating {
	var samples []svd.Rating
	for _, u := range store.Users() {
		for _, r := range store.UserRatingEvents(u.ID) {
			samples = append(samples, svd.Rating{
				UserID:  r.UserID,
				MovieID: r.MovieID,
				Rating:  r.Rating,
			})
		}
	}
	return samples
}

// parameterGrid is the search space for the 100k dataset. Small by intent:
// each candidate costs folds full trainings.
func parameterGrid() []svd.Config {
	var grid []svd.Config
	for _, factors := range []int{25, 50, 100} {
		for _, lr := range []float64{0.002, 0.005} {
			for _, reg := range []float64{0.02, 0.05} {
				cfg := svd.DefaultConfig()
				cfg.Factors = factors
				cfg.LearningRate = lr
				cfg.Regularization = reg
				grid = append(grid, cfg)
			}
		}
	}
	return grid
}
