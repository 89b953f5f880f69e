// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package dataset

import "sort"

// Encoder maps categorical string values to stable integer codes.
//
// Fit assigns codes 0..n-1 to the lexicographically sorted unique values.
// The vocabulary is frozen after Fit: encoding an unseen value fails with
// *ValidationError rather than extending the vocabulary, so codes derived
// during training remain valid for the lifetime of the process.
type Encoder struct {
	field   string
	classes []string
	codes   map[string]int
}

// NewEncoder creates an encoder for the named field. The field name appears
// in validation errors.
func NewEncoder(field string) *Encoder {
	return &Encoder{
		field: field,
		codes: make(map[string]int),
	}
}

// Fit builds the vocabulary from the observed values. Duplicates are
// collapsed; ordering of the input does not matter. Calling Fit again
// replaces the vocabulary entirely.
func (e *Encoder) Fit(values []string) {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}

	e.classes = classes
	e.codes = codes
}

// Encode returns the code for value, or *ValidationError if the value is
// outside the fitted vocabulary. Matching is exact and case sensitive.
func (e *Encoder) Encode(value string) (int, error) {
	code, ok := e.codes[value]
	if !ok {
		return 0, &ValidationError{
			Field:   e.field,
			Value:   value,
			Classes: e.Classes(),
		}
	}
	return code, nil
}

// Classes returns a copy of the fitted vocabulary in code order.
func (e *Encoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len returns the vocabulary size.
func (e *Encoder) Len() int {
	return len(e.classes)
}
