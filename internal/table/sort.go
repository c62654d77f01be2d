package table

import (
	"cmp"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter orders rows by a SortSpec using the schema's typed comparators.
// Strings use locale-aware collation, numbers compare numerically and
// booleans order false before true. It is safe for concurrent use.
type Sorter[T any] struct {
	schema *Schema[T]

	mu       sync.Mutex
	collator *collate.Collator
}

// NewSorter creates a Sorter collating strings for the given locale.
func NewSorter[T any](schema *Schema[T], locale language.Tag) *Sorter[T] {
	return &Sorter[T]{
		schema:   schema,
		collator: collate.New(locale),
	}
}

// Sort returns a sorted copy of rows. The sort is stable in both
// directions: rows with equal keys keep their input order. An empty or
// unknown column returns the rows in input order.
func (s *Sorter[T]) Sort(rows []T, spec SortSpec) []T {
	out := slices.Clone(rows)
	col, ok := s.schema.Column(spec.Column)
	if spec.Column == "" || !ok {
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	compare := s.comparator(col)
	if spec.Direction == Descending {
		slices.SortStableFunc(out, func(a, b T) int { return -compare(a, b) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// comparator must be called with mu held; the collator is stateful.
func (s *Sorter[T]) comparator(col Column[T]) func(a, b T) int {
	switch col.Kind {
	case KindNumber:
		return func(a, b T) int { return cmp.Compare(col.num(a), col.num(b)) }
	case KindBool:
		return func(a, b T) int { return compareBool(col.boolean(a), col.boolean(b)) }
	default:
		return func(a, b T) int { return s.collator.CompareString(col.str(a), col.str(b)) }
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
