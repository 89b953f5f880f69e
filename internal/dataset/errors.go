// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUserExists is returned by AddUser when the ID is already taken.
var ErrUserExists = errors.New("user already exists")

// StorageError indicates a dataset file or artifact is missing or unreadable.
// It is fatal for the request that triggered it: a failed load is retained
// and reported by every subsequent call, never retried.
type StorageError struct {
	Resource string
	Path     string
	Err      error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage: %s at %s: %v", e.Resource, e.Path, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Resource, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a categorical value outside the vocabulary
// frozen at dataset load. The message enumerates the accepted values.
type ValidationError struct {
	Field   string
	Value   string
	Classes []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be one of [%s]", e.Field, e.Value, strings.Join(e.Classes, ", "))
}
