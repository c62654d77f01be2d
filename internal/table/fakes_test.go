package table

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"
)

type player struct {
	ID          int
	Name        string
	Club        string
	Nationality string
	Attack      float64
	Active      bool
}

var playerSchema = MustSchema("id",
	[]Column[player]{
		NumberColumn("id", "ID", func(p player) float64 { return float64(p.ID) }),
		StringColumn("name", "Name", func(p player) string { return p.Name }),
		StringColumn("club", "Club", func(p player) string { return p.Club }).Unsortable(),
		StringColumn("nationality", "Nationality", func(p player) string { return p.Nationality }),
		NumberColumn("attack", "Attack", func(p player) float64 { return p.Attack }),
		BoolColumn("active", "Active", func(p player) bool { return p.Active }),
	},
	[]Filter{
		TextFilter("name", "Name", "Search by name"),
		TextFilter("club", "Club", "Search by club"),
		DropdownFilter("nationality", "Nationality", "Argentina", "Portugal"),
	},
)

func ids(rows []player) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func playersWithIDs(from, to int) []player {
	var out []player
	for id := from; id <= to; id++ {
		out = append(out, player{ID: id, Name: "Player"})
	}
	return out
}

// fakeClock fires timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *fakeClock
	at    time.Duration
	f     func()
	done  bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.done && t.at <= c.now {
			t.done = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *fakeTimer) int { return int(a.at - b.at) })
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// stubSource answers every fetch immediately and records the queries.
type stubSource struct {
	mu      sync.Mutex
	queries []Query
	respond func(Query) (Page[player], error)
}

func (s *stubSource) Fetch(_ context.Context, q Query) (Page[player], error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	respond := s.respond
	s.mu.Unlock()
	if respond == nil {
		return Page[player]{}, nil
	}
	return respond(q)
}

func (s *stubSource) calls() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queries)
}

func (s *stubSource) last(t *testing.T) Query {
	t.Helper()
	qs := s.calls()
	if len(qs) == 0 {
		t.Fatal("no fetch issued")
	}
	return qs[len(qs)-1]
}

func fixedPage(rows []player, total int) func(Query) (Page[player], error) {
	return func(Query) (Page[player], error) {
		return Page[player]{Items: rows, TotalItems: total}, nil
	}
}

// gatedSource blocks every fetch until the test replies to it.
type gatedSource struct {
	requests chan *pendingFetch
}

type pendingFetch struct {
	query Query
	reply chan fetchResult
}

type fetchResult struct {
	page Page[player]
	err  error
}

func newGatedSource() *gatedSource {
	return &gatedSource{requests: make(chan *pendingFetch, 16)}
}

func (s *gatedSource) Fetch(ctx context.Context, q Query) (Page[player], error) {
	p := &pendingFetch{query: q, reply: make(chan fetchResult, 1)}
	s.requests <- p
	select {
	case r := <-p.reply:
		return r.page, r.err
	case <-ctx.Done():
		return Page[player]{}, ctx.Err()
	}
}

func (s *gatedSource) next(t *testing.T) *pendingFetch {
	t.Helper()
	select {
	case p := <-s.requests:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return nil
	}
}

// nextN collects n fetches ordered by requested page.
func (s *gatedSource) nextN(t *testing.T, n int) []*pendingFetch {
	t.Helper()
	out := make([]*pendingFetch, 0, n)
	for range n {
		out = append(out, s.next(t))
	}
	slices.SortFunc(out, func(a, b *pendingFetch) int { return a.query.Page - b.query.Page })
	return out
}

func (p *pendingFetch) succeed(rows []player, total int) {
	p.reply <- fetchResult{page: Page[player]{Items: rows, TotalItems: total}}
}

func (p *pendingFetch) fail(err error) {
	p.reply <- fetchResult{err: err}
}

// countingRecorder tallies recorder events.
type countingRecorder struct {
	mu       sync.Mutex
	started  int
	outcomes map[string]int
	commits  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: map[string]int{}, commits: map[string]int{}}
}

func (r *countingRecorder) FetchStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *countingRecorder) FetchFinished(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

func (r *countingRecorder) FilterCommitted(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits[field]++
}
