package fixture

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/pitabwire/touchline/internal/football"
	"github.com/pitabwire/touchline/internal/table"
)

// Server serves a Dataset over HTTP.
type Server struct {
	data    *Dataset
	sorter  *table.Sorter[football.Player]
	latency time.Duration
	status  atomic.Int32
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLatency delays every response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// NewServer builds the fixture handler. A nil data uses Default().
func NewServer(data *Dataset, opts ...Option) *Server {
	if data == nil {
		data = Default()
	}
	s := &Server{
		data:   data,
		sorter: table.NewSorter(football.PlayerSchema, language.English),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.inject)
	r.Get("/players", s.handlePlayers)
	r.Get("/teams", arrayHandler(s.data.Teams))
	r.Get("/get_all_clubs", arrayHandler(s.data.Clubs))
	r.Get("/get_all_leagues", arrayHandler(s.data.Leagues))
	r.Get("/get_all_players", arrayHandler(s.data.SquadPlayers))
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// FailWith makes every endpoint answer with status until FailWith(0).
func (s *Server) FailWith(status int) {
	s.status.Store(int32(status))
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-r.Context().Done():
				return
			}
		}
		if status := int(s.status.Load()); status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// page mirrors the Spring Data page envelope.
type page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	number, err := intParam(q.Get("page"), 0)
	if err != nil || number < 0 {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	size, err := intParam(q.Get("size"), 20)
	if err != nil || size <= 0 {
		http.Error(w, "invalid size", http.StatusBadRequest)
		return
	}

	filters := map[string]string{}
	for _, f := range football.PlayerSchema.Filters() {
		if v := q.Get(f.Field); v != "" {
			filters[f.Field] = v
		}
	}
	match := football.PlayerSchema.Predicate(filters)
	matched := make([]football.Player, 0, len(s.data.Players))
	for _, p := range s.data.Players {
		if match(p) {
			matched = append(matched, p)
		}
	}
	if raw := q.Get("sort"); raw != "" {
		column, dir, _ := strings.Cut(raw, ",")
		spec := table.SortSpec{Column: column, Direction: table.Ascending}
		if strings.EqualFold(dir, string(table.Descending)) {
			spec.Direction = table.Descending
		}
		matched = s.sorter.Sort(matched, spec)
	}

	total := len(matched)
	start := min(number*size, total)
	end := min(start+size, total)
	writeJSON(w, page[football.Player]{
		Content:       matched[start:end],
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
		Size:          size,
		Number:        number,
	})
}

func arrayHandler[T any](items []T) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, items)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
