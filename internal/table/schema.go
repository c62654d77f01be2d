package table

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Kind is the attribute type of a column. It selects the comparator used
// for client-side sorting.
type Kind string

// Supported column kinds.
const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "boolean"
)

// FilterKind selects how a filter's raw input is committed.
type FilterKind string

// Supported filter kinds.
const (
	// FilterText is debounced: keystrokes update raw input and the value is
	// committed after the quiescence period.
	FilterText FilterKind = "text"
	// FilterDropdown commits immediately on selection.
	FilterDropdown FilterKind = "dropdown"
)

// Column is a typed accessor for one attribute of T.
type Column[T any] struct {
	Field    string
	Label    string
	Kind     Kind
	Sortable bool

	str     func(T) string
	num     func(T) float64
	boolean func(T) bool
}

// StringColumn declares a sortable string attribute.
func StringColumn[T any](field, label string, get func(T) string) Column[T] {
	return Column[T]{Field: field, Label: label, Kind: KindString, Sortable: true, str: get}
}

// NumberColumn declares a sortable numeric attribute.
func NumberColumn[T any](field, label string, get func(T) float64) Column[T] {
	return Column[T]{Field: field, Label: label, Kind: KindNumber, Sortable: true, num: get}
}

// BoolColumn declares a sortable boolean attribute.
func BoolColumn[T any](field, label string, get func(T) bool) Column[T] {
	return Column[T]{Field: field, Label: label, Kind: KindBool, Sortable: true, boolean: get}
}

// Unsortable returns a copy of the column that rejects sort requests.
func (c Column[T]) Unsortable() Column[T] {
	c.Sortable = false
	return c
}

// Text renders the attribute as a string. Filters compare against this form.
func (c Column[T]) Text(row T) string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.num(row), 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.boolean(row))
	default:
		return c.str(row)
	}
}

// Filter declares a filter control bound to a column.
type Filter struct {
	Field       string
	Label       string
	Kind        FilterKind
	Placeholder string
	// Options are static dropdown values. When empty, options are derived
	// from the data source if it supports it.
	Options []string
}

// TextFilter declares a debounced text filter.
func TextFilter(field, label, placeholder string) Filter {
	return Filter{Field: field, Label: label, Kind: FilterText, Placeholder: placeholder}
}

// DropdownFilter declares an immediately-applied dropdown filter.
func DropdownFilter(field, label string, options ...string) Filter {
	return Filter{Field: field, Label: label, Kind: FilterDropdown, Options: options}
}

// reservedParams are request parameters owned by paging and sorting.
var reservedParams = map[string]bool{"page": true, "size": true, "sort": true}

// Schema describes the columns and filters of an entity type.
type Schema[T any] struct {
	idField   string
	columns   []Column[T]
	columnIdx map[string]int
	filters   []Filter
	filterIdx map[string]int
}

// NewSchema validates and indexes columns and filters. idField names the
// column holding the stable row identifier; every filter must reference a
// declared column.
func NewSchema[T any](idField string, columns []Column[T], filters []Filter) (*Schema[T], error) {
	s := &Schema[T]{
		idField:   idField,
		columnIdx: make(map[string]int, len(columns)),
		filterIdx: make(map[string]int, len(filters)),
	}

	for i, col := range columns {
		if col.Field == "" {
			return nil, fmt.Errorf("table: column %d has no field", i)
		}
		if _, dup := s.columnIdx[col.Field]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", col.Field)
		}
		if col.str == nil && col.num == nil && col.boolean == nil {
			return nil, fmt.Errorf("table: column %q has no accessor", col.Field)
		}
		s.columnIdx[col.Field] = i
		s.columns = append(s.columns, col)
	}

	if _, ok := s.columnIdx[idField]; !ok {
		return nil, fmt.Errorf("table: id field %q is not a column", idField)
	}

	for _, f := range filters {
		if _, ok := s.columnIdx[f.Field]; !ok {
			return nil, fmt.Errorf("table: filter %q does not reference a column", f.Field)
		}
		if reservedParams[f.Field] {
			return nil, fmt.Errorf("table: filter %q collides with a paging parameter", f.Field)
		}
		if _, dup := s.filterIdx[f.Field]; dup {
			return nil, fmt.Errorf("table: duplicate filter %q", f.Field)
		}
		if f.Kind != FilterText && f.Kind != FilterDropdown {
			return nil, fmt.Errorf("table: filter %q has unknown kind %q", f.Field, f.Kind)
		}
		s.filterIdx[f.Field] = len(s.filters)
		s.filters = append(s.filters, f)
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for
// package-level schema declarations.
func MustSchema[T any](idField string, columns []Column[T], filters []Filter) *Schema[T] {
	s, err := NewSchema(idField, columns, filters)
	if err != nil {
		panic(err)
	}
	return s
}

// IDField returns the name of the identifier column.
func (s *Schema[T]) IDField() string { return s.idField }

// Columns returns the declared columns in order.
func (s *Schema[T]) Columns() []Column[T] { return s.columns }

// Filters returns the declared filters in order.
func (s *Schema[T]) Filters() []Filter { return s.filters }

// Column looks up a column by field name.
func (s *Schema[T]) Column(field string) (Column[T], bool) {
	i, ok := s.columnIdx[field]
	if !ok {
		return Column[T]{}, false
	}
	return s.columns[i], true
}

// Filter looks up a filter by field name.
func (s *Schema[T]) Filter(field string) (Filter, bool) {
	i, ok := s.filterIdx[field]
	if !ok {
		return Filter{}, false
	}
	return s.filters[i], true
}

// Predicate composes the non-empty committed filters into a single row
// predicate. Text filters match a case-folded substring; dropdown filters
// match the whole value. Unknown fields are ignored. The returned function
// is not safe for concurrent use.
func (s *Schema[T]) Predicate(filters map[string]string) func(T) bool {
	type clause struct {
		col    Column[T]
		kind   FilterKind
		needle string
	}

	fold := cases.Fold()
	var clauses []clause
	for field, value := range filters {
		if value == "" {
			continue
		}
		f, ok := s.Filter(field)
		if !ok {
			continue
		}
		col, _ := s.Column(field)
		needle := value
		if f.Kind == FilterText {
			needle = fold.String(value)
		}
		clauses = append(clauses, clause{col: col, kind: f.Kind, needle: needle})
	}

	return func(row T) bool {
		for _, c := range clauses {
			text := c.col.Text(row)
			if c.kind == FilterDropdown {
				if text != c.needle {
					return false
				}
				continue
			}
			if !strings.Contains(fold.String(text), c.needle) {
				return false
			}
		}
		return true
	}
}
