package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pitabwire/touchline/internal/catalog"
	"github.com/pitabwire/touchline/internal/session"
	"github.com/pitabwire/touchline/internal/table"
	"github.com/pitabwire/touchline/model"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]string{"hello": "world"})

	if w.Code != 200 {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if xct := w.Header().Get("X-Content-Type-Options"); xct != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", xct)
	}

	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["hello"] != "world" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteError_envelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, model.NewNotFoundError("table not found"))

	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}

	var resp struct {
		Error model.ErrorEnvelope `json:"error"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", resp.Error.Code)
	}
}

func TestWriteError_non_envelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, fmt.Errorf("something went wrong"))

	if w.Code != 500 {
		t.Errorf("status = %d, want 500 for non-envelope error", w.Code)
	}
}

func TestWriteNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNotFound(w, "resource missing")
	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidationError(w, []model.FieldError{
		{Field: "column", Code: "REQUIRED", Message: "column is required"},
	})
	if w.Code != 422 {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestStatusForCode_coverage(t *testing.T) {
	codes := []struct {
		code   string
		status int
	}{
		{model.ErrBadRequest, 400},
		{model.ErrNotFound, 404},
		{model.ErrValidationError, 422},
		{model.ErrRateLimited, 429},
		{model.ErrInternalError, 500},
		{model.ErrUpstream, 502},
	}
	for _, tc := range codes {
		t.Run(tc.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, &model.ErrorEnvelope{Code: tc.code, Message: "test"})
			if w.Code != tc.status {
				t.Errorf("status for %s = %d, want %d", tc.code, w.Code, tc.status)
			}
		})
	}
}

func TestWriteError_domainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown table", fmt.Errorf("%w: %q", catalog.ErrUnknownTable, "referees"), 404, model.ErrNotFound},
		{"unknown field", fmt.Errorf("%w: %q", table.ErrUnknownField, "age"), 404, model.ErrNotFound},
		{"unknown session", fmt.Errorf("%w: abc", session.ErrNotFound), 404, model.ErrNotFound},
		{"closed controller", table.ErrClosed, 404, model.ErrNotFound},
		{"session limit", session.ErrLimitReached, 429, model.ErrRateLimited},
		{"not sortable", table.ErrNotSortable, 422, model.ErrValidationError},
		{"not dropdown", table.ErrNotDropdownFilter, 422, model.ErrValidationError},
		{"fetch failure", fmt.Errorf("options: %w", model.NewHTTPStatusError(503)), 502, model.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var resp struct {
				Error model.ErrorEnvelope `json:"error"`
			}
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.code)
			}
		})
	}
}

func TestWriteError_upstreamMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, model.NewHTTPStatusError(503))

	var resp struct {
		Error model.ErrorEnvelope `json:"error"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error.Message != "HTTP error, status 503" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}
