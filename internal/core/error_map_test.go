package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

type testCodedError struct{ code, msg string }

func (e *testCodedError) Error() string     { return e.msg }
func (e *testCodedError) ErrorCode() string { return e.code }

func TestMapErrorCodedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback int
		wantCode string
		wantHTTP int
		wantMsg  string
	}{
		{
			name:     "invalid reference",
			err:      &proxycurl.InvalidReferenceError{Input: "https://invalid-website.com/profile"},
			fallback: 500,
			wantCode: "invalid_reference",
			wantHTTP: 400,
			wantMsg:  "Invalid profile URL or username provided. Please provide a valid LinkedIn, Twitter/X, or Facebook URL or username.",
		},
		{
			name:     "missing reference",
			err:      proxycurl.ErrMissingReference,
			fallback: 400,
			wantCode: "missing_reference",
			wantHTTP: 500,
			wantMsg:  "At least one profile URL must be provided",
		},
		{
			name:     "multiple references",
			err:      proxycurl.ErrMultipleReferences,
			fallback: 400,
			wantCode: "multiple_references",
			wantHTTP: 500,
			wantMsg:  "Only one profile URL may be provided",
		},
		{
			name:     "upstream api error",
			err:      &proxycurl.APIError{StatusCode: 401, Message: "Invalid API key"},
			fallback: 500,
			wantCode: "upstream_api_error",
			wantHTTP: 502,
			wantMsg:  "Proxycurl API error: Invalid API key",
		},
		{
			name:     "wrapped upstream api error",
			err:      fmt.Errorf("lookup: %w", &proxycurl.APIError{StatusCode: 500, Message: "boom"}),
			fallback: 500,
			wantCode: "upstream_api_error",
			wantHTTP: 502,
			wantMsg:  "lookup: Proxycurl API error: boom",
		},
		{
			name:     "flag validation",
			err:      &proxycurl.ValidationError{Field: "skills", Value: "yes", Allowed: []string{"include", "exclude"}},
			fallback: 500,
			wantCode: "schema_validation_failed",
			wantHTTP: 400,
			wantMsg:  `invalid value "yes" for skills (allowed: include, exclude)`,
		},
		{
			name:     "unauthorized",
			err:      &testCodedError{code: "unauthorized", msg: "unauthorized: missing bearer token"},
			fallback: 500,
			wantCode: "unauthorized",
			wantHTTP: 401,
			wantMsg:  "unauthorized: missing bearer token",
		},
		{
			name:     "audit unavailable",
			err:      &testCodedError{code: "audit_unavailable", msg: "audit store not configured"},
			fallback: 500,
			wantCode: "audit_unavailable",
			wantHTTP: 503,
			wantMsg:  "audit store not configured",
		},
		{
			name:     "unknown code falls through",
			err:      &testCodedError{code: "something_else", msg: "other"},
			fallback: 500,
			wantCode: "internal_error",
			wantHTTP: 500,
			wantMsg:  "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err, tt.fallback)
			if got.Code != tt.wantCode {
				t.Fatalf("want code %q, got %q", tt.wantCode, got.Code)
			}
			if got.HTTPStatus != tt.wantHTTP {
				t.Fatalf("want status %d, got %d", tt.wantHTTP, got.HTTPStatus)
			}
			if got.Message != tt.wantMsg {
				t.Fatalf("want message %q, got %q", tt.wantMsg, got.Message)
			}
		})
	}
}

func TestMapErrorCommonCases(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback int
		wantCode string
		wantHTTP int
	}{
		{name: "nil", err: nil, fallback: 500, wantCode: "internal_error", wantHTTP: 500},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), fallback: 500, wantCode: "timeout", wantHTTP: 504},
		{name: "invalid json", err: errors.New("invalid JSON body"), fallback: 500, wantCode: "invalid_request_schema", wantHTTP: 400},
		{name: "bad request fallback", err: errors.New("nope"), fallback: 400, wantCode: "bad_request", wantHTTP: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err, tt.fallback)
			if got.Code != tt.wantCode {
				t.Fatalf("want code %q, got %q", tt.wantCode, got.Code)
			}
			if got.HTTPStatus != tt.wantHTTP {
				t.Fatalf("want status %d, got %d", tt.wantHTTP, got.HTTPStatus)
			}
		})
	}
}
