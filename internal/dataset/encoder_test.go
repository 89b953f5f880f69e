// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package dataset

import (
	"errors"
	"strings"
	"testing"
)

func TestEncoderFitSortsAndDeduplicates(t *testing.T) {
	t.Parallel()

	e := NewEncoder("occupation")
	e.Fit([]string{"writer", "engineer", "writer", "artist", "engineer"})

	want := []string{"artist", "engineer", "writer"}
	got := e.Classes()
	if len(got) != len(want) {
		t.Fatalf("Classes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Classes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	tests := []struct {
		value string
		code  int
	}{
		{"artist", 0},
		{"engineer", 1},
		{"writer", 2},
	}
	for _, tt := range tests {
		code, err := e.Encode(tt.value)
		if err != nil {
			t.Errorf("Encode(%q) error: %v", tt.value, err)
		}
		if code != tt.code {
			t.Errorf("Encode(%q) = %d, want %d", tt.value, code, tt.code)
		}
	}
}

func TestEncoderRejectsUnknownValue(t *testing.T) {
	t.Parallel()

	e := NewEncoder("gender")
	e.Fit([]string{"M", "F"})

	_, err := e.Encode("X")
	if err == nil {
		t.Fatal("expected error for unknown value")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Field != "gender" {
		t.Errorf("field = %q, want gender", verr.Field)
	}
	// The message must enumerate the accepted vocabulary.
	if !strings.Contains(err.Error(), "F, M") {
		t.Errorf("message %q does not enumerate classes", err.Error())
	}
}

func TestEncoderIsCaseSensitive(t *testing.T) {
	t.Parallel()

	e := NewEncoder("gender")
	e.Fit([]string{"M", "F"})

	if _, err := e.Encode("m"); err == nil {
		t.Error("lowercase value should not match uppercase vocabulary")
	}
}

func TestEncoderVocabularyFrozen(t *testing.T) {
	t.Parallel()

	e := NewEncoder("occupation")
	e.Fit([]string{"writer"})

	// A failed Encode must not extend the vocabulary.
	if _, err := e.Encode("pilot"); err == nil {
		t.Fatal("expected error")
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d after failed Encode, want 1", e.Len())
	}
	if _, err := e.Encode("pilot"); err == nil {
		t.Error("unknown value should still fail on retry")
	}
}

func TestEncoderClassesReturnsCopy(t *testing.T) {
	t.Parallel()

	e := NewEncoder("gender")
	e.Fit([]string{"M", "F"})

	classes := e.Classes()
	classes[0] = "mutated"

	if e.Classes()[0] != "F" {
		t.Error("mutating the returned slice must not affect the encoder")
	}
}
