// Package transport contains the HTTP router, middleware chain, and the
// table and session handlers of the touchline API.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pitabwire/touchline/internal/catalog"
	"github.com/pitabwire/touchline/internal/observability"
	"github.com/pitabwire/touchline/internal/session"
	"github.com/pitabwire/touchline/internal/table"
	"github.com/pitabwire/touchline/model"
)

// statusForCode maps ErrorEnvelope codes to HTTP status codes.
var statusForCode = map[string]int{
	model.ErrBadRequest:      http.StatusBadRequest,
	model.ErrNotFound:        http.StatusNotFound,
	model.ErrValidationError: http.StatusUnprocessableEntity,
	model.ErrRateLimited:     http.StatusTooManyRequests,
	model.ErrInternalError:   http.StatusInternalServerError,
	model.ErrUpstream:        http.StatusBadGateway,
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// WriteError writes err as an ErrorEnvelope JSON response with the
// matching HTTP status code. Errors that are neither envelopes nor known
// domain errors become a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	ee := toEnvelope(err)

	status := statusForCode[ee.Code]
	if status == 0 {
		status = http.StatusInternalServerError
	}

	type errorResponse struct {
		Error *model.ErrorEnvelope `json:"error"`
	}
	WriteJSON(w, status, errorResponse{Error: ee})
}

// WriteNotFound writes a 404 error response.
func WriteNotFound(w http.ResponseWriter, msg string) {
	WriteError(w, model.NewNotFoundError(msg))
}

// WriteValidationError writes a 422 error response with field-level details.
func WriteValidationError(w http.ResponseWriter, details []model.FieldError) {
	WriteError(w, model.NewValidationError(details))
}

// writeRequestError writes err with the request's trace ID and logs
// internal and upstream errors with the request logger.
func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	ee := toEnvelope(err)
	logger := observability.LoggerFrom(r.Context(), zap.NewNop())
	switch ee.Code {
	case model.ErrInternalError:
		logger.Error("request failed", zap.Error(err))
	case model.ErrUpstream, model.ErrRateLimited:
		logger.Warn("request rejected", zap.String("code", ee.Code), zap.Error(err))
	}
	ee.TraceID = observability.TraceIDFromContext(r.Context())
	WriteError(w, ee)
}

// toEnvelope translates domain errors into API error envelopes.
func toEnvelope(err error) *model.ErrorEnvelope {
	var ee *model.ErrorEnvelope
	if errors.As(err, &ee) {
		return ee
	}
	var fe *model.FetchError
	if errors.As(err, &fe) {
		return model.NewUpstreamError(fe.Message)
	}

	switch {
	case errors.Is(err, catalog.ErrUnknownTable),
		errors.Is(err, table.ErrUnknownField):
		return model.NewNotFoundError(err.Error())
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, table.ErrClosed):
		return model.NewNotFoundError("session not found")
	case errors.Is(err, session.ErrLimitReached):
		return model.NewRateLimitedError("too many open sessions")
	case errors.Is(err, table.ErrNotSortable):
		return model.NewValidationError([]model.FieldError{
			{Field: "column", Code: "NOT_SORTABLE", Message: err.Error()},
		})
	case errors.Is(err, table.ErrNotDropdownFilter):
		return model.NewValidationError([]model.FieldError{
			{Field: "field", Code: "NOT_DROPDOWN", Message: err.Error()},
		})
	case errors.Is(err, table.ErrNotTextFilter):
		return model.NewValidationError([]model.FieldError{
			{Field: "field", Code: "NOT_TEXT", Message: err.Error()},
		})
	}
	return model.NewInternalError()
}
