// Package table implements a data table controller: it reconciles remote
// fetching, pagination, column sorting and multi-field filtering into one
// consistent view state, discarding responses from superseded requests.
package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/pitabwire/touchline/model"
)

// Defaults applied when the corresponding option is not given.
const (
	DefaultPageSize = 25
	DefaultDebounce = 500 * time.Millisecond
)

var (
	ErrUnknownField      = errors.New("table: unknown field")
	ErrNotTextFilter     = errors.New("table: not a text filter")
	ErrNotDropdownFilter = errors.New("table: not a dropdown filter")
	ErrNotSortable       = errors.New("table: column is not sortable")
	ErrClosed            = errors.New("table: controller closed")
)

// Session is the type-erased controller surface used by callers that host
// tables of several entity types.
type Session interface {
	Load() error
	SetFilter(field, value string) error
	CommitFilter(field string) error
	SetSort(column string) error
	GoToPage(n int) bool
	Snapshot() Snapshot
	Close()
}

type settings struct {
	pageSize     int
	debounce     time.Duration
	serverSort   bool
	clock        Clock
	logger       *zap.Logger
	recorder     Recorder
	observer     func(Snapshot)
	locale       language.Tag
	fetchTimeout time.Duration
}

// Option configures a Controller.
type Option func(*settings)

// WithPageSize sets the number of rows per page.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithDebounce sets the quiescence period for text filters.
func WithDebounce(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithServerSort delegates sorting to the source: a sort change resets the
// page and fetches with a sort parameter.
func WithServerSort() Option {
	return func(s *settings) { s.serverSort = true }
}

// WithClock replaces the clock used for debounce timers.
func WithClock(c Clock) Option {
	return func(s *settings) { s.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithObserver registers a callback invoked with the new view after every
// state change. It runs with the controller locked and must not call back
// into the controller.
func WithObserver(f func(Snapshot)) Option {
	return func(s *settings) { s.observer = f }
}

// WithLocale sets the collation locale for client-side string sorting.
func WithLocale(tag language.Tag) Option {
	return func(s *settings) { s.locale = tag }
}

// WithFetchTimeout bounds each source fetch. Zero means no bound beyond
// the controller's lifetime.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *settings) { s.fetchTimeout = d }
}

// Controller owns the filter, sort and page state of one table instance.
// All mutations are serialized by a mutex; fetches run on their own
// goroutines and are applied only if no newer request has been issued.
type Controller[T any] struct {
	schema *Schema[T]
	source Source[T]
	cfg    settings
	sorter *Sorter[T]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State
	fetched  []T
	rows     []T
	loading  bool
	err      *model.FetchError
	epoch    uint64
	timers   map[string]Timer
	timerSeq map[string]uint64
	closed   bool
}

// New creates a controller for schema backed by source. No fetch is issued
// until Load is called.
func New[T any](schema *Schema[T], source Source[T], opts ...Option) *Controller[T] {
	cfg := settings{
		pageSize: DefaultPageSize,
		debounce: DefaultDebounce,
		clock:    SystemClock{},
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		locale:   language.English,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		schema:   schema,
		source:   source,
		cfg:      cfg,
		sorter:   NewSorter(schema, cfg.locale),
		ctx:      ctx,
		cancel:   cancel,
		state:    NewState(cfg.pageSize, cfg.serverSort),
		timers:   make(map[string]Timer),
		timerSeq: make(map[string]uint64),
	}
}

// Load issues the initial fetch.
func (c *Controller[T]) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.fetchLocked()
	c.notifyLocked()
	return nil
}

// SetRawFilter records a keystroke in a text filter and restarts that
// field's debounce timer. It never fetches by itself.
func (c *Controller[T]) SetRawFilter(field, value string) error {
	if err := c.checkFilter(field, FilterText); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.state = c.state.WithRawFilter(field, value)
	c.stopTimerLocked(field)

	seq := c.timerSeq[field]
	c.timers[field] = c.cfg.clock.AfterFunc(c.cfg.debounce, func() {
		c.debounced(field, seq)
	})
	c.notifyLocked()
	return nil
}

// CommitFilter commits the raw value of a text filter immediately,
// cancelling its pending debounce timer.
func (c *Controller[T]) CommitFilter(field string) error {
	if err := c.checkFilter(field, FilterText); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.stopTimerLocked(field)
	c.commitLocked(field)
	return nil
}

// SetDropdownFilter applies a dropdown selection immediately. An empty
// value removes the constraint.
func (c *Controller[T]) SetDropdownFilter(field, value string) error {
	if err := c.checkFilter(field, FilterDropdown); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	rawChanged := c.state.Filters.Raw[field] != value
	next, changed := c.state.WithDropdown(field, value)
	c.state = next
	if changed {
		c.cfg.recorder.FilterCommitted(field)
		c.fetchLocked()
	}
	if changed || rawChanged {
		c.notifyLocked()
	}
	return nil
}

// SetFilter routes value to the text or dropdown path according to the
// field's filter kind.
func (c *Controller[T]) SetFilter(field, value string) error {
	f, ok := c.schema.Filter(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if f.Kind == FilterDropdown {
		return c.SetDropdownFilter(field, value)
	}
	return c.SetRawFilter(field, value)
}

// SetSort toggles the sort on column. In client mode the loaded rows are
// reordered synchronously; in server mode the page resets and a fetch is
// issued.
func (c *Controller[T]) SetSort(column string) error {
	col, ok := c.schema.Column(column)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, column)
	}
	if !col.Sortable {
		return fmt.Errorf("%w: %q", ErrNotSortable, column)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	next, refetch := c.state.WithSort(column)
	c.state = next
	if refetch {
		c.fetchLocked()
	} else {
		c.rows = c.displayLocked()
	}
	c.notifyLocked()
	return nil
}

// GoToPage navigates to page n and reports whether a fetch was issued.
// Pages outside [1, page count] and the current page are no-ops.
func (c *Controller[T]) GoToPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	next, ok := c.state.WithPage(n)
	if !ok {
		return false
	}
	c.state = next
	c.fetchLocked()
	c.notifyLocked()
	return true
}

// ViewModel returns a snapshot of the current state.
func (c *Controller[T]) ViewModel() ViewModel[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Snapshot returns the view model with rows type-erased.
func (c *Controller[T]) Snapshot() Snapshot {
	return c.ViewModel().Erase()
}

// Close stops all debounce timers and cancels in-flight fetches. Responses
// that arrive afterwards are discarded. Close is idempotent.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for field := range c.timers {
		c.stopTimerLocked(field)
	}
	c.cancel()
}

// Wait blocks until every fetch issued so far has completed.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

func (c *Controller[T]) checkFilter(field string, kind FilterKind) error {
	f, ok := c.schema.Filter(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if f.Kind != kind {
		if kind == FilterText {
			return fmt.Errorf("%w: %q", ErrNotTextFilter, field)
		}
		return fmt.Errorf("%w: %q", ErrNotDropdownFilter, field)
	}
	return nil
}

// stopTimerLocked cancels the pending timer for field. Bumping the sequence
// also invalidates a callback that already fired and is waiting on mu.
func (c *Controller[T]) stopTimerLocked(field string) {
	if t, ok := c.timers[field]; ok {
		t.Stop()
		delete(c.timers, field)
	}
	c.timerSeq[field]++
}

func (c *Controller[T]) debounced(field string, seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.timerSeq[field] != seq {
		return
	}
	delete(c.timers, field)
	c.commitLocked(field)
}

func (c *Controller[T]) commitLocked(field string) {
	next, changed := c.state.CommitFilter(field)
	if !changed {
		return
	}
	c.state = next
	c.cfg.recorder.FilterCommitted(field)
	c.cfg.logger.Debug("filter committed",
		zap.String("field", field),
		zap.String("value", next.Filters.Committed[field]),
	)
	c.fetchLocked()
	c.notifyLocked()
}

// fetchLocked mints a new epoch and starts a fetch for the current state.
func (c *Controller[T]) fetchLocked() {
	c.epoch++
	e := c.epoch
	q := c.state.Query()

	c.loading = true
	c.err = nil

	c.wg.Add(1)
	c.cfg.recorder.FetchStarted()
	go c.run(e, q)
}

func (c *Controller[T]) run(e uint64, q Query) {
	defer c.wg.Done()

	ctx := c.ctx
	if c.cfg.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	page, err := c.source.Fetch(ctx, q)
	elapsed := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || e != c.epoch {
		c.cfg.recorder.FetchFinished(OutcomeStale, elapsed)
		c.cfg.logger.Debug("discarding stale response",
			zap.Uint64("epoch", e),
			zap.Uint64("current_epoch", c.epoch),
		)
		return
	}

	if err != nil {
		c.cfg.recorder.FetchFinished(OutcomeError, elapsed)
		c.err = model.AsFetchError(err)
		c.loading = false
		c.cfg.logger.Warn("fetch failed",
			zap.Uint64("epoch", e),
			zap.Int("page", q.Page),
			zap.String("kind", c.err.Kind),
			zap.Error(err),
		)
		c.notifyLocked()
		return
	}

	c.cfg.recorder.FetchFinished(OutcomeSuccess, elapsed)
	next, clamped := c.state.WithTotal(page.TotalItems)
	c.state = next
	if clamped {
		c.cfg.logger.Debug("page out of range after fetch, clamping",
			zap.Int("page", next.Page.Number),
			zap.Int("total_items", page.TotalItems),
		)
		c.fetchLocked()
		c.notifyLocked()
		return
	}

	c.fetched = page.Items
	c.rows = c.displayLocked()
	c.loading = false
	c.notifyLocked()
}

// displayLocked derives the rendered rows from fetch order. Server-sorted
// rows are shown as received.
func (c *Controller[T]) displayLocked() []T {
	if c.state.ServerSort {
		return c.fetched
	}
	return c.sorter.Sort(c.fetched, c.state.Sort)
}

func (c *Controller[T]) viewLocked() ViewModel[T] {
	rows := slices.Clone(c.rows)
	if rows == nil {
		rows = []T{}
	}
	return ViewModel[T]{
		Rows:    rows,
		Loading: c.loading,
		Error:   errorView(c.err),
		Page:    pageView(c.state.Page),
		Sort:    c.state.Sort,
		Filters: c.state.Filters.clone(),
		Epoch:   c.epoch,
	}
}

func (c *Controller[T]) notifyLocked() {
	if c.cfg.observer != nil {
		c.cfg.observer(c.viewLocked().Erase())
	}
}

var _ Session = (*Controller[struct{}])(nil)
