package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pitabwire/touchline/internal/table"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	fetchDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	bodySizeBuckets      = []float64{100, 1024, 10240, 102400, 1048576}
)

// breakerStateValues maps breaker state names to gauge values.
var breakerStateValues = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// Metrics holds all Prometheus metric instruments for touchline.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Table controller metrics
	TableFetchesTotal        *prometheus.CounterVec
	TableFetchDuration       *prometheus.HistogramVec
	TableFetchesInFlight     *prometheus.GaugeVec
	TableStaleResponsesTotal *prometheus.CounterVec
	TableFilterCommitsTotal  *prometheus.CounterVec

	// Sessions and sources
	SessionsActive      prometheus.Gauge
	SessionsOpenedTotal *prometheus.CounterVec
	SourceBreakerState  *prometheus.GaugeVec
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "touchline_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPResponseSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "touchline_http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),

		TableFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_table_fetches_total",
			Help: "Total number of completed table fetches by outcome.",
		}, []string{"table", "outcome"}),
		TableFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "touchline_table_fetch_duration_seconds",
			Help:    "Table fetch duration in seconds.",
			Buckets: fetchDurationBuckets,
		}, []string{"table"}),
		TableFetchesInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "touchline_table_fetches_in_flight",
			Help: "Number of table fetches awaiting a response.",
		}, []string{"table"}),
		TableStaleResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_table_stale_responses_total",
			Help: "Total number of responses discarded because a newer request superseded them.",
		}, []string{"table"}),
		TableFilterCommitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_table_filter_commits_total",
			Help: "Total number of committed filter changes.",
		}, []string{"table", "field"}),

		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "touchline_sessions_active",
			Help: "Number of open table sessions.",
		}),
		SessionsOpenedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_sessions_opened_total",
			Help: "Total number of table sessions opened.",
		}, []string{"table"}),
		SourceBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "touchline_source_breaker_state",
			Help: "Source circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"source"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSizeBytes,
		m.TableFetchesTotal,
		m.TableFetchDuration,
		m.TableFetchesInFlight,
		m.TableStaleResponsesTotal,
		m.TableFilterCommitsTotal,
		m.SessionsActive,
		m.SessionsOpenedTotal,
		m.SourceBreakerState,
	)

	return m
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration, respSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
	m.HTTPResponseSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(respSize))
}

// RecordSessionOpened counts a new session for tableName.
func (m *Metrics) RecordSessionOpened(tableName string) {
	m.SessionsOpenedTotal.WithLabelValues(tableName).Inc()
}

// SetSessionsActive sets the number of open sessions.
func (m *Metrics) SetSessionsActive(n int) {
	m.SessionsActive.Set(float64(n))
}

// SetSourceBreakerState records a breaker transition. state is the
// breaker's state name ("closed", "half-open" or "open").
func (m *Metrics) SetSourceBreakerState(sourceName, state string) {
	v, ok := breakerStateValues[state]
	if !ok {
		return
	}
	m.SourceBreakerState.WithLabelValues(sourceName).Set(v)
}

// TableRecorder returns a table.Recorder that reports controller events
// for tableName.
func (m *Metrics) TableRecorder(tableName string) table.Recorder {
	return &tableRecorder{metrics: m, table: tableName}
}

type tableRecorder struct {
	metrics *Metrics
	table   string
}

func (r *tableRecorder) FetchStarted() {
	r.metrics.TableFetchesInFlight.WithLabelValues(r.table).Inc()
}

func (r *tableRecorder) FetchFinished(outcome string, d time.Duration) {
	r.metrics.TableFetchesInFlight.WithLabelValues(r.table).Dec()
	r.metrics.TableFetchesTotal.WithLabelValues(r.table, outcome).Inc()
	r.metrics.TableFetchDuration.WithLabelValues(r.table).Observe(d.Seconds())
	if outcome == table.OutcomeStale {
		r.metrics.TableStaleResponsesTotal.WithLabelValues(r.table).Inc()
	}
}

func (r *tableRecorder) FilterCommitted(field string) {
	r.metrics.TableFilterCommitsTotal.WithLabelValues(r.table, field).Inc()
}

// MetricsMiddleware returns HTTP middleware that records request metrics
// labelled with chi's route pattern rather than the raw path, so session
// IDs do not explode label cardinality.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start), sw.bytes)
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	pattern = strings.ReplaceAll(pattern, "/*/", "/")
	pattern = strings.TrimSuffix(pattern, "/*")
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// statusWriter wraps http.ResponseWriter to capture status and bytes.
type statusWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
