package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitabwire/touchline/internal/observability"
	"github.com/pitabwire/touchline/internal/session"
	"github.com/pitabwire/touchline/internal/table"
	"github.com/pitabwire/touchline/model"
)

// maxWait bounds the wait query parameter.
const maxWait = 30 * time.Second

func handleGetSession(sessions *session.Manager) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *session.Session, wait time.Duration) {
		writeView(w, r, http.StatusOK, s, wait)
	})
}

func handleCloseSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Close(chi.URLParam(r, "id")); err != nil {
			writeRequestError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetFilter(sessions *session.Manager) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *session.Session, wait time.Duration) {
		var body struct {
			Value *string `json:"value"`
			// Commit applies a text filter without waiting for the
			// debounce delay.
			Commit bool `json:"commit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeRequestError(w, r, model.NewBadRequestError("invalid JSON body"))
			return
		}
		if body.Value == nil {
			WriteValidationError(w, []model.FieldError{
				{Field: "value", Code: "REQUIRED", Message: "value is required"},
			})
			return
		}

		field := chi.URLParam(r, "field")
		if err := s.Controller.SetFilter(field, *body.Value); err != nil {
			writeRequestError(w, r, err)
			return
		}
		if body.Commit {
			if err := s.Controller.CommitFilter(field); err != nil && !errors.Is(err, table.ErrNotTextFilter) {
				writeRequestError(w, r, err)
				return
			}
		}
		writeView(w, r, http.StatusOK, s, wait)
	})
}

func handleSetSort(sessions *session.Manager) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *session.Session, wait time.Duration) {
		var body struct {
			Column string `json:"column"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeRequestError(w, r, model.NewBadRequestError("invalid JSON body"))
			return
		}
		if body.Column == "" {
			WriteValidationError(w, []model.FieldError{
				{Field: "column", Code: "REQUIRED", Message: "column is required"},
			})
			return
		}

		if err := s.Controller.SetSort(body.Column); err != nil {
			if errors.Is(err, table.ErrUnknownField) {
				WriteValidationError(w, []model.FieldError{
					{Field: "column", Code: "UNKNOWN", Message: err.Error()},
				})
				return
			}
			writeRequestError(w, r, err)
			return
		}
		writeView(w, r, http.StatusOK, s, wait)
	})
}

func handleGoToPage(sessions *session.Manager) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *session.Session, wait time.Duration) {
		var body struct {
			Page *int `json:"page"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeRequestError(w, r, model.NewBadRequestError("invalid JSON body"))
			return
		}
		if body.Page == nil {
			WriteValidationError(w, []model.FieldError{
				{Field: "page", Code: "REQUIRED", Message: "page is required"},
			})
			return
		}

		// Out-of-range pages and the current page leave the view unchanged.
		s.Controller.GoToPage(*body.Page)
		writeView(w, r, http.StatusOK, s, wait)
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *session.Session, wait time.Duration)

// withSession resolves the {id} session and the wait parameter.
func withSession(sessions *session.Manager, h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wait, err := waitParam(r)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		s, err := sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		observability.AnnotateSpan(r.Context(),
			observability.AttrTable.String(s.Table),
			observability.AttrSessionID.String(s.ID),
		)
		h(w, r, s, wait)
	}
}

// waitParam parses the optional wait query parameter, a Go duration such
// as "2s".
func waitParam(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, model.NewBadRequestError(fmt.Sprintf("invalid wait %q", raw))
	}
	return min(d, maxWait), nil
}

// writeView responds with the session view. With a positive wait it first
// blocks until no fetch is outstanding or the wait elapses.
func writeView(w http.ResponseWriter, r *http.Request, status int, s *session.Session, wait time.Duration) {
	view := s.Controller.Snapshot()
	if wait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		view, _ = s.Await(ctx, session.Idle)
		cancel()
	}
	WriteJSON(w, status, model.SessionDescriptor{ID: s.ID, Table: s.Table, View: view})
}
