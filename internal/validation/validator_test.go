// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package validation

import (
	"strings"
	"testing"
)

type searchRequest struct {
	Lat            float64 `validate:"latitude"`
	Lon            float64 `validate:"longitude"`
	Category       string  `validate:"omitempty,category"`
	Vibe           string  `validate:"omitempty,vibe"`
	MaxWalkMinutes int     `validate:"omitempty,min=5,max=60"`
}

func TestValidateStructValid(t *testing.T) {
	t.Parallel()

	req := searchRequest{
		Lat: 13.0418, Lon: 80.2341,
		Category: "cafe", Vibe: "work", MaxWalkMinutes: 20,
	}
	if verr := ValidateStruct(&req); verr != nil {
		t.Errorf("valid request rejected: %v", verr)
	}

	// Optional fields empty.
	minimal := searchRequest{Lat: 0, Lon: 0}
	if verr := ValidateStruct(&minimal); verr != nil {
		t.Errorf("minimal request rejected: %v", verr)
	}
}

func TestValidateStructErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       searchRequest
		wantField string
	}{
		{
			name:      "latitude out of range",
			req:       searchRequest{Lat: 91, Lon: 0},
			wantField: "Lat",
		},
		{
			name:      "longitude out of range",
			req:       searchRequest{Lat: 0, Lon: -181},
			wantField: "Lon",
		},
		{
			name:      "unknown category",
			req:       searchRequest{Category: "bowling"},
			wantField: "Category",
		},
		{
			name:      "unknown vibe",
			req:       searchRequest{Vibe: "gloomy"},
			wantField: "Vibe",
		},
		{
			name:      "walk minutes too small",
			req:       searchRequest{MaxWalkMinutes: 2},
			wantField: "MaxWalkMinutes",
		},
		{
			name:      "walk minutes too large",
			req:       searchRequest{MaxWalkMinutes: 90},
			wantField: "MaxWalkMinutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.req)
			if verr == nil {
				t.Fatal("expected validation error")
			}
			found := false
			for _, fe := range verr.Errors() {
				if fe.Field() == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention field %s", verr, tt.wantField)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&searchRequest{Lat: 91, Lon: 181})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Lat") || !strings.Contains(apiErr.Message, "Lon") {
		t.Errorf("message %q must mention both failing fields", apiErr.Message)
	}
	if apiErr.Details["fields"] == nil {
		t.Error("multi-error details must list fields")
	}
}
