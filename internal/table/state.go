package table

import (
	"maps"
	"net/url"
	"strconv"
)

// Direction is the order of a sorted column.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortSpec is the single active sort. An empty Column preserves fetch order.
type SortSpec struct {
	Column    string    `json:"column,omitempty"`
	Direction Direction `json:"direction"`
}

// Toggle selects column: the active column flips direction, any other
// column becomes active in ascending order.
func (s SortSpec) Toggle(column string) SortSpec {
	if s.Column == column {
		if s.Direction == Ascending {
			return SortSpec{Column: column, Direction: Descending}
		}
		return SortSpec{Column: column, Direction: Ascending}
	}
	return SortSpec{Column: column, Direction: Ascending}
}

// Param renders the sort as a "column,direction" request parameter.
func (s SortSpec) Param() string {
	if s.Column == "" {
		return ""
	}
	return s.Column + "," + string(s.Direction)
}

// FilterState holds raw input and committed filter values per field.
type FilterState struct {
	Raw       map[string]string `json:"raw"`
	Committed map[string]string `json:"committed"`
}

func (f FilterState) clone() FilterState {
	return FilterState{Raw: maps.Clone(f.Raw), Committed: maps.Clone(f.Committed)}
}

// PageState tracks the current page. Number is 1-indexed.
type PageState struct {
	Number     int `json:"number"`
	Size       int `json:"size"`
	TotalItems int `json:"total_items"`
}

// TotalPages is ceil(TotalItems / Size); zero for an empty collection.
func (p PageState) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.TotalItems + p.Size - 1) / p.Size
}

// PageCount is the number of pages to display: never less than one.
func (p PageState) PageCount() int {
	return max(p.TotalPages(), 1)
}

// Contains reports whether n is a navigable page.
func (p PageState) Contains(n int) bool {
	return n >= 1 && n <= p.PageCount()
}

// State is the controller's filter, sort, and page intent. Its methods are
// pure: they return a new State and never mutate the receiver.
type State struct {
	Page    PageState
	Sort    SortSpec
	Filters FilterState
	// ServerSort makes sort changes part of the fetch parameters.
	ServerSort bool
}

// NewState returns the initial state for the given page size.
func NewState(pageSize int, serverSort bool) State {
	return State{
		Page:       PageState{Number: 1, Size: pageSize},
		Sort:       SortSpec{Direction: Ascending},
		Filters:    FilterState{Raw: map[string]string{}, Committed: map[string]string{}},
		ServerSort: serverSort,
	}
}

// WithRawFilter records a keystroke. It never changes fetch parameters.
func (s State) WithRawFilter(field, value string) State {
	s.Filters = s.Filters.clone()
	s.Filters.Raw[field] = value
	return s
}

// CommitFilter copies the raw value of field into the committed set and
// resets to page 1. The second result reports whether fetch parameters
// changed; committing an unchanged value is a no-op.
func (s State) CommitFilter(field string) (State, bool) {
	raw := s.Filters.Raw[field]
	if s.Filters.Committed[field] == raw {
		return s, false
	}
	s.Filters = s.Filters.clone()
	s.Filters.Committed[field] = raw
	s.Page.Number = 1
	return s, true
}

// WithDropdown applies a dropdown selection immediately and resets to
// page 1. An unchanged selection is a no-op.
func (s State) WithDropdown(field, value string) (State, bool) {
	if s.Filters.Committed[field] == value && s.Filters.Raw[field] == value {
		return s, false
	}
	changed := s.Filters.Committed[field] != value
	s.Filters = s.Filters.clone()
	s.Filters.Raw[field] = value
	s.Filters.Committed[field] = value
	if changed {
		s.Page.Number = 1
	}
	return s, changed
}

// WithSort toggles the sort on column. The second result is true only in
// server-sort mode, where the sort is a fetch parameter and the page resets.
func (s State) WithSort(column string) (State, bool) {
	s.Sort = s.Sort.Toggle(column)
	if !s.ServerSort {
		return s, false
	}
	s.Page.Number = 1
	return s, true
}

// WithPage navigates to page n. Out-of-range pages and the current page
// are no-ops.
func (s State) WithPage(n int) (State, bool) {
	if !s.Page.Contains(n) || n == s.Page.Number {
		return s, false
	}
	s.Page.Number = n
	return s, true
}

// WithTotal records the total item count reported by a fetch. If the
// current page no longer exists it is clamped to the last page and the
// second result is true.
func (s State) WithTotal(total int) (State, bool) {
	s.Page.TotalItems = max(total, 0)
	if last := s.Page.PageCount(); s.Page.Number > last {
		s.Page.Number = last
		return s, true
	}
	return s, false
}

// Query derives the fetch parameters for the current state.
func (s State) Query() Query {
	q := Query{
		Page: s.Page.Number - 1,
		Size: s.Page.Size,
	}
	for field, value := range s.Filters.Committed {
		if value == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]string)
		}
		q.Filters[field] = value
	}
	if s.ServerSort && s.Sort.Column != "" {
		sort := s.Sort
		q.Sort = &sort
	}
	return q
}

// Query is the set of parameters sent to a Source. Page is zero-indexed and
// Filters never contains empty values.
type Query struct {
	Page    int
	Size    int
	Filters map[string]string
	Sort    *SortSpec
}

// Values encodes the query as request parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	for field, value := range q.Filters {
		v.Set(field, value)
	}
	if q.Sort != nil && q.Sort.Column != "" {
		v.Set("sort", q.Sort.Param())
	}
	return v
}
