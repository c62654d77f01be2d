package table

import (
	"context"
	"time"
)

// Page is one page of entities returned by a Source.
type Page[T any] struct {
	Items      []T
	TotalItems int
}

// Source loads entities for a Query. Implementations must be safe for
// concurrent use: a controller may have several fetches in flight.
type Source[T any] interface {
	Fetch(ctx context.Context, q Query) (Page[T], error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context, q Query) (Page[T], error) {
	return f(ctx, q)
}

// Fetch outcomes reported to a Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	// OutcomeStale marks a response discarded because a newer request was
	// issued after it.
	OutcomeStale = "stale"
)

// Recorder receives controller lifecycle events, typically for metrics.
type Recorder interface {
	FetchStarted()
	FetchFinished(outcome string, d time.Duration)
	FilterCommitted(field string)
}

type nopRecorder struct{}

func (nopRecorder) FetchStarted()                       {}
func (nopRecorder) FetchFinished(string, time.Duration) {}
func (nopRecorder) FilterCommitted(string)              {}
