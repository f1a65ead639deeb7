package proxycurl

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes reported through ErrorCode.
const (
	CodeInvalidReference   = "invalid_reference"
	CodeMissingReference   = "missing_reference"
	CodeMultipleReferences = "multiple_references"
	CodeUpstreamAPIError   = "upstream_api_error"
	CodeSchemaValidation   = "schema_validation_failed"
)

// InvalidReferenceError is returned when a profile reference matches no
// supported provider. It is a caller input error and is never retried.
type InvalidReferenceError struct {
	Input string
}

func (e *InvalidReferenceError) Error() string {
	return "Invalid profile URL or username provided. Please provide a valid LinkedIn, Twitter/X, or Facebook URL or username."
}

func (e *InvalidReferenceError) ErrorCode() string { return CodeInvalidReference }

type missingReferenceError struct{}

func (missingReferenceError) Error() string     { return "At least one profile URL must be provided" }
func (missingReferenceError) ErrorCode() string { return CodeMissingReference }

// ErrMissingReference is returned when a request reaches dispatch with no
// provider URL set. No network call is made.
var ErrMissingReference error = missingReferenceError{}

type multipleReferencesError struct{}

func (multipleReferencesError) Error() string     { return "Only one profile URL may be provided" }
func (multipleReferencesError) ErrorCode() string { return CodeMultipleReferences }

// ErrMultipleReferences is returned when a request sets more than one
// provider URL. No network call is made.
var ErrMultipleReferences error = multipleReferencesError{}

// APIError is a non-2xx response or a transport failure talking to the
// enrichment endpoint. StatusCode is 0 for transport failures.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return "Proxycurl API error: " + e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) ErrorCode() string { return CodeUpstreamAPIError }

// ValidationError reports an enrichment flag outside its enumeration.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("unknown enrichment flag %q", e.Field)
	}
	return fmt.Sprintf("invalid value %q for %s (allowed: %s)", e.Value, e.Field, strings.Join(e.Allowed, ", "))
}

func (e *ValidationError) ErrorCode() string { return CodeSchemaValidation }

// IsInvalidReference reports whether err is, or wraps, an InvalidReferenceError.
func IsInvalidReference(err error) bool {
	var target *InvalidReferenceError
	return errors.As(err, &target)
}
