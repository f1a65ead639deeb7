package core

import (
	"context"
	"errors"
	"strings"
)

// CodedError is implemented by domain errors that carry a machine-readable code.
type CodedError interface {
	error
	ErrorCode() string
}

type ErrorInfo struct {
	Code       string
	Message    string
	HTTPStatus int
}

func MapError(err error, fallbackStatus int) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: "internal_error", Message: "internal server error", HTTPStatus: fallbackStatus}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	var coded CodedError
	if errors.As(err, &coded) {
		code := coded.ErrorCode()
		switch code {
		case "invalid_reference", "schema_validation_failed", "invalid_request_schema":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 400}
		case "missing_reference", "multiple_references":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 500}
		case "upstream_api_error":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 502}
		case "unauthorized":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 401}
		case "flag_not_allowed":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 403}
		case "audit_unavailable":
			return ErrorInfo{Code: code, Message: msg, HTTPStatus: 503}
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorInfo{Code: "timeout", Message: msg, HTTPStatus: 504}
	case strings.Contains(lower, "invalid json"), strings.Contains(lower, "request body must contain a single json object"):
		return ErrorInfo{Code: "invalid_request_schema", Message: msg, HTTPStatus: 400}
	default:
		code := "internal_error"
		if fallbackStatus >= 400 && fallbackStatus < 500 {
			code = "bad_request"
		}
		return ErrorInfo{Code: code, Message: msg, HTTPStatus: fallbackStatus}
	}
}
