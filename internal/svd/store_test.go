// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package svd

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := Train(context.Background(), blockSamples(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "models", "svd.gob.gz")
	meta := Metadata{
		TrainedAt:          m.TrainedAt,
		SampleCount:        len(blockSamples()),
		TrainingDurationMS: 12,
		Config:             DefaultConfig(),
	}
	if err := Save(path, m, meta); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, loadedMeta, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if loadedMeta.UserCount != len(m.UserIndex) {
		t.Errorf("user count = %d, want %d", loadedMeta.UserCount, len(m.UserIndex))
	}
	if loadedMeta.SampleCount != len(blockSamples()) {
		t.Errorf("sample count = %d, want %d", loadedMeta.SampleCount, len(blockSamples()))
	}
	if loadedMeta.Checksum == "" || loadedMeta.SizeBytes == 0 {
		t.Error("metadata missing checksum or size")
	}
	if time.Since(loadedMeta.SavedAt) > time.Minute {
		t.Errorf("saved_at = %v, want recent", loadedMeta.SavedAt)
	}

	for u := 1; u <= 6; u++ {
		for mo := 1; mo <= 6; mo++ {
			if math.Abs(loaded.Estimate(u, mo)-m.Estimate(u, mo)) > 1e-12 {
				t.Fatalf("loaded model diverges at (%d,%d)", u, mo)
			}
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := Load(filepath.Join(t.TempDir(), "absent.gob.gz"))
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestLoadCorruptArtifact(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "svd.gob.gz")
	if err := os.WriteFile(path, []byte("not a model"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error for corrupt artifact")
	}
	if !strings.Contains(err.Error(), "read model file") {
		t.Errorf("error = %v, want read failure", err)
	}
}
