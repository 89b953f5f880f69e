// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package validation

import (
	"strings"
	"testing"
)

type addUserFixture struct {
	UserID     int    `validate:"gt=0"`
	Age        int    `validate:"gte=1,lte=120"`
	Gender     string `validate:"required"`
	Occupation string `validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := addUserFixture{UserID: 1001, Age: 29, Gender: "F", Occupation: "engineer"}
	if verr := ValidateStruct(&req); verr != nil {
		t.Errorf("valid struct rejected: %v", verr)
	}
}

func TestValidateStructFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       addUserFixture
		wantField string
		wantMsg   string
	}{
		{
			name:      "zero user id",
			req:       addUserFixture{Age: 29, Gender: "M", Occupation: "writer"},
			wantField: "UserID",
			wantMsg:   "must be greater than 0",
		},
		{
			name:      "age over limit",
			req:       addUserFixture{UserID: 1, Age: 200, Gender: "M", Occupation: "writer"},
			wantField: "Age",
			wantMsg:   "less than or equal to 120",
		},
		{
			name:      "missing gender",
			req:       addUserFixture{UserID: 1, Age: 30, Occupation: "writer"},
			wantField: "Gender",
			wantMsg:   "Gender is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(&tt.req)
			if verr == nil {
				t.Fatal("expected validation error, got nil")
			}
			if len(verr.Errors()) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(verr.Errors()), verr)
			}

			fe := verr.Errors()[0]
			if fe.Field != tt.wantField {
				t.Errorf("field = %q, want %q", fe.Field, tt.wantField)
			}
			if !strings.Contains(fe.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", fe.Message, tt.wantMsg)
			}
		})
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	t.Parallel()

	req := addUserFixture{UserID: 1, Age: 0, Gender: "M", Occupation: "writer"}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "Age" {
		t.Errorf("details field = %v, want Age", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&addUserFixture{})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Errors()) < 2 {
		t.Fatalf("expected multiple field errors, got %d", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("multi-error details should list fields")
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("multi-error message should join failures: %q", apiErr.Message)
	}
}
