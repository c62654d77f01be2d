package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitabwire/touchline/internal/catalog"
	"github.com/pitabwire/touchline/internal/observability"
	"github.com/pitabwire/touchline/internal/session"
	"github.com/pitabwire/touchline/model"
)

func handleListTables(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"tables": c.Descriptors()})
	}
}

func handleGetTable(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tbl, err := c.Get(chi.URLParam(r, "table"))
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, tbl.Descriptor())
	}
}

func handleOptions(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field := chi.URLParam(r, "field")

		opts, err := c.Options(r.Context(), chi.URLParam(r, "table"), field)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, model.OptionsResponse{Field: field, Options: opts})
	}
}

func handleOpenSession(c *catalog.Catalog, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wait, err := waitParam(r)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		tbl, err := c.Get(chi.URLParam(r, "table"))
		if err != nil {
			writeRequestError(w, r, err)
			return
		}

		s, err := sessions.Open(tbl)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		observability.AnnotateSpan(r.Context(),
			observability.AttrTable.String(s.Table),
			observability.AttrSessionID.String(s.ID),
		)
		w.Header().Set("Location", "/api/sessions/"+s.ID)
		writeView(w, r, http.StatusCreated, s, wait)
	}
}
