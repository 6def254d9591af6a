package backend

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessageExtraction(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"detail string", newAPIError("POST", "/x", 400, []byte(`{"detail":"Category name already exists"}`)), "Failed", "Category name already exists"},
		{"validation list", newAPIError("POST", "/x", 422, []byte(`{"detail":[{"loc":["body","price"],"msg":"must be positive"},{"loc":["body","name"],"msg":"field required"}]}`)), "Failed", "price: must be positive; name: field required"},
		{"nested location", newAPIError("PUT", "/x", 422, []byte(`{"detail":[{"loc":["body","hours",0,"open_time"],"msg":"invalid time"}]}`)), "", "hours.0.open_time: invalid time"},
		{"detail object", newAPIError("POST", "/x", 400, []byte(`{"detail":{"message":"Image too large"}}`)), "", "Image too large"},
		{"message key", newAPIError("POST", "/x", 500, []byte(`{"message":"db down"}`)), "", "db down"},
		{"error key", newAPIError("POST", "/x", 409, []byte(`{"error":"conflict"}`)), "", "conflict"},
		{"html body", newAPIError("GET", "/x", 502, []byte(`<html>bad gateway</html>`)), "Failed to load zones", "Failed to load zones"},
		{"forbidden", newAPIError("GET", "/x", 403, []byte(`{"detail":"User not linked"}`)), "", MsgForbidden},
		{"unauthorized", newAPIError("GET", "/x", 401, nil), "", MsgUnauthorized},
		{"network", &NetworkError{Method: "GET", Path: "/x", Err: errors.New("dial tcp: refused")}, "", MsgNetwork},
		{"wrapped", fmt.Errorf("update: %w", newAPIError("PUT", "/x", 422, []byte(`{"detail":"bad"}`))), "", "bad"},
		{"input", fmt.Errorf("create: %w", Invalid("name", errors.New("must not be empty"))), "", "name: must not be empty"},
		{"plain", errors.New("boom"), "", MsgGeneric},
		{"nil", nil, "Saved", "Saved"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Message(tc.err, tc.fallback); got != tc.want {
				t.Errorf("Message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyAndReport(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
		report bool
	}{
		{400, KindValidation, false},
		{401, KindUnauthorized, false},
		{403, KindForbidden, false},
		{404, KindNotFound, false},
		{422, KindValidation, false},
		{409, KindOther, false},
		{500, KindServer, true},
		{503, KindServer, true},
	}
	for _, tc := range cases {
		err := newAPIError("GET", "/x", tc.status, nil)
		if got := Classify(err); got != tc.kind {
			t.Errorf("%d: Classify = %v, want %v", tc.status, got, tc.kind)
		}
		if got := ShouldReport(err); got != tc.report {
			t.Errorf("%d: ShouldReport = %v", tc.status, got)
		}
		if got := StatusOf(fmt.Errorf("wrap: %w", err)); got != tc.status {
			t.Errorf("StatusOf = %d", got)
		}
	}
}
