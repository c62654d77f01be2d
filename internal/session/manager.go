// Package session keeps the table controllers opened through the HTTP API
// alive between requests and tears them down when they go idle.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/pitabwire/touchline/internal/catalog"
	"github.com/pitabwire/touchline/internal/config"
	"github.com/pitabwire/touchline/internal/observability"
	"github.com/pitabwire/touchline/internal/table"
)

var (
	// ErrNotFound is returned for unknown, closed or expired sessions.
	ErrNotFound = errors.New("session: not found")
	// ErrLimitReached is returned by Open when the maximum number of live
	// sessions is reached.
	ErrLimitReached = errors.New("session: limit reached")
	// ErrShutdown is returned by Open after Shutdown.
	ErrShutdown = errors.New("session: manager shut down")
)

// End reasons reported in logs.
const (
	reasonExpired  = "expired"
	reasonClosed   = "closed"
	reasonShutdown = "shutdown"
)

// Session is a controller bound to one table.
type Session struct {
	ID         string
	Table      string
	Created    time.Time
	Controller table.Session

	reason atomic.Value
	ended  atomic.Bool
	once   sync.Once

	mu      sync.Mutex
	changed chan struct{}
}

// Ended reports whether the session was torn down.
func (s *Session) Ended() bool { return s.ended.Load() }

// Idle reports whether no fetch is outstanding.
func Idle(v table.Snapshot) bool { return !v.Loading }

// Await blocks until the controller publishes a view for which done
// returns true, or ctx ends. It returns the latest view either way; the
// error is ctx's.
func (s *Session) Await(ctx context.Context, done func(table.Snapshot) bool) (table.Snapshot, error) {
	for {
		ch := s.changes()
		v := s.Controller.Snapshot()
		if done(v) || s.Ended() {
			return v, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return s.Controller.Snapshot(), ctx.Err()
		}
	}
}

func (s *Session) changes() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// notify runs under the controller lock on every view change.
func (s *Session) notify(table.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.changed)
	s.changed = make(chan struct{})
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for session lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics reports session counts to m.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// Manager stores sessions in a TTL cache. Every Get pushes the idle
// deadline back; a session that is not touched for the idle TTL is evicted
// and its controller closed.
type Manager struct {
	mu      sync.Mutex
	items   *cache.Cache
	max     int
	closed  atomic.Bool
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewManager creates a manager from the session configuration.
// MaxSessions of zero means unlimited.
func NewManager(cfg config.SessionConfig, opts ...Option) *Manager {
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	m := &Manager{
		items:  cache.New(cfg.IdleTTL, cleanup),
		max:    cfg.MaxSessions,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.items.OnEvicted(func(_ string, v any) {
		if s, ok := v.(*Session); ok {
			m.teardown(s)
		}
	})
	return m
}

// Open creates a controller for tbl, starts its first load and stores it
// under a new session ID. The manager installs its own view observer, so
// an observer in opts is replaced.
func (m *Manager) Open(tbl catalog.Table, opts ...table.Option) (*Session, error) {
	if m.closed.Load() {
		return nil, ErrShutdown
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && m.items.ItemCount() >= m.max {
		m.items.DeleteExpired()
		if m.items.ItemCount() >= m.max {
			return nil, fmt.Errorf("%w: %d sessions open", ErrLimitReached, m.max)
		}
	}

	id := uuid.NewString()
	logger := m.logger.With(zap.String("table", tbl.Name()), zap.String("session_id", id))
	s := &Session{
		ID:      id,
		Table:   tbl.Name(),
		Created: time.Now(),
		changed: make(chan struct{}),
	}
	opts = append([]table.Option{table.WithLogger(logger)}, opts...)
	s.Controller = tbl.Open(append(opts, table.WithObserver(s.notify))...)
	if err := m.items.Add(id, s, cache.DefaultExpiration); err != nil {
		s.Controller.Close()
		return nil, fmt.Errorf("session: store %s: %w", id, err)
	}
	if err := s.Controller.Load(); err != nil {
		m.items.Delete(id)
		return nil, fmt.Errorf("session: load %s: %w", tbl.Name(), err)
	}

	logger.Info("session opened")
	if m.metrics != nil {
		m.metrics.RecordSessionOpened(tbl.Name())
	}
	m.reportActive()
	return s, nil
}

// Get returns a live session and refreshes its idle deadline.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s := v.(*Session)
	m.items.SetDefault(id, s)
	if s.Ended() {
		// Evicted between the lookup and the refresh.
		m.items.Delete(id)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Close tears down a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	v.(*Session).reason.Store(reasonClosed)
	m.items.Delete(id)
	return nil
}

// Len returns the number of stored sessions, including expired sessions
// the janitor has not collected yet.
func (m *Manager) Len() int {
	return m.items.ItemCount()
}

// Shutdown closes every session. Open fails afterwards.
func (m *Manager) Shutdown() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Flush does not run the eviction callback.
	for id, item := range m.items.Items() {
		if s, ok := item.Object.(*Session); ok {
			s.reason.Store(reasonShutdown)
		}
		m.items.Delete(id)
	}
}

func (m *Manager) teardown(s *Session) {
	s.once.Do(func() {
		s.ended.Store(true)
		s.Controller.Close()
		s.notify(table.Snapshot{})

		reason, _ := s.reason.Load().(string)
		if reason == "" {
			reason = reasonExpired
		}
		m.logger.Info("session ended",
			zap.String("table", s.Table),
			zap.String("session_id", s.ID),
			zap.String("reason", reason),
			zap.Duration("age", time.Since(s.Created)),
		)
		m.reportActive()
	})
}

func (m *Manager) reportActive() {
	if m.metrics != nil {
		m.metrics.SetSessionsActive(m.items.ItemCount())
	}
}
