package model

import (
	"errors"
	"fmt"
)

// Standard API error codes.
const (
	ErrBadRequest      = "BAD_REQUEST"
	ErrNotFound        = "NOT_FOUND"
	ErrValidationError = "VALIDATION_ERROR"
	ErrRateLimited     = "RATE_LIMITED"
	ErrInternalError   = "INTERNAL_ERROR"
	ErrUpstream        = "UPSTREAM_ERROR"
)

// ErrorEnvelope is the standard error response envelope returned by the
// HTTP API. It implements the error interface.
type ErrorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewValidationError returns a VALIDATION_ERROR with field-level details.
func NewValidationError(details []FieldError) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrValidationError,
		Message: "One or more fields are invalid",
		Details: details,
	}
}

// NewRateLimitedError returns a RATE_LIMITED error.
func NewRateLimitedError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrRateLimited, Message: msg}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}

// NewUpstreamError returns an UPSTREAM_ERROR for a failed remote data
// source call made on behalf of the request.
func NewUpstreamError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrUpstream, Message: msg}
}

// Fetch error kinds reported by remote data sources.
const (
	FetchTransport  = "TRANSPORT_ERROR"
	FetchHTTPStatus = "HTTP_STATUS_ERROR"
	FetchDecode     = "DECODE_ERROR"
)

// FetchError is a failure to load data from a remote data source. Kind is
// one of the Fetch* constants; Status is set for FetchHTTPStatus only.
type FetchError struct {
	Kind    string
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a failed request. The message is the cause's text.
func NewTransportError(err error) *FetchError {
	return &FetchError{Kind: FetchTransport, Message: err.Error(), Err: err}
}

// NewHTTPStatusError reports a response outside the 2xx range.
func NewHTTPStatusError(status int) *FetchError {
	return &FetchError{
		Kind:    FetchHTTPStatus,
		Status:  status,
		Message: fmt.Sprintf("HTTP error, status %d", status),
	}
}

// NewDecodeError reports a body that is not JSON of the expected shape.
func NewDecodeError(err error) *FetchError {
	return &FetchError{
		Kind:    FetchDecode,
		Message: fmt.Sprintf("decode response: %v", err),
		Err:     err,
	}
}

// AsFetchError converts any error into a FetchError. Errors that are not
// already classified are treated as transport failures.
func AsFetchError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return NewTransportError(err)
}
