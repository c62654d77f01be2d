// Package catalog binds table schemas to their data sources under a table
// name, resolves table descriptors for the presentation layer and opens
// controller sessions.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/pitabwire/touchline/internal/table"
	"github.com/pitabwire/touchline/model"
)

// ErrUnknownTable is returned for table names that are not registered.
var ErrUnknownTable = errors.New("catalog: unknown table")

// Data modes reported in descriptors.
const (
	DataPaged      = "paged"
	DataCollection = "collection"
)

// Table is a registered table with its entity type erased.
type Table interface {
	Name() string
	Descriptor() model.TableDescriptor
	// Options returns the values offered by a dropdown filter.
	Options(ctx context.Context, field string) ([]string, error)
	// Open creates a controller for the table. opts are applied after the
	// table's own settings.
	Open(opts ...table.Option) table.Session
}

// Settings are the per-table controller settings.
type Settings struct {
	Title        string
	DataMode     string
	ServerSort   bool
	PageSize     int
	Debounce     time.Duration
	Locale       language.Tag
	FetchTimeout time.Duration
	Logger       *zap.Logger
	// Recorder receives controller events for every session of the table.
	Recorder table.Recorder
}

// distincter is implemented by sources that can list the values of a
// column across their whole collection.
type distincter interface {
	Distinct(ctx context.Context, field string) ([]string, error)
}

// Entry binds a schema and a source under a table name.
type Entry[T any] struct {
	name     string
	schema   *table.Schema[T]
	source   table.Source[T]
	settings Settings
}

// NewEntry creates a table entry.
func NewEntry[T any](name string, schema *table.Schema[T], src table.Source[T], s Settings) *Entry[T] {
	if s.Title == "" {
		s.Title = name
	}
	if s.DataMode == "" {
		s.DataMode = DataPaged
	}
	if s.PageSize <= 0 {
		s.PageSize = table.DefaultPageSize
	}
	if s.Debounce <= 0 {
		s.Debounce = table.DefaultDebounce
	}
	if s.Locale == language.Und {
		s.Locale = language.English
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return &Entry[T]{name: name, schema: schema, source: src, settings: s}
}

// Name returns the table name.
func (e *Entry[T]) Name() string { return e.name }

// Descriptor resolves the table metadata.
func (e *Entry[T]) Descriptor() model.TableDescriptor {
	desc := model.TableDescriptor{
		Name:            e.name,
		Title:           e.settings.Title,
		SessionEndpoint: fmt.Sprintf("/api/tables/%s/sessions", e.name),
		DataMode:        e.settings.DataMode,
		SortMode:        "client",
		PageSize:        e.settings.PageSize,
		DebounceMs:      e.settings.Debounce.Milliseconds(),
	}
	if e.settings.ServerSort {
		desc.SortMode = "server"
	}

	for _, col := range e.schema.Columns() {
		desc.Columns = append(desc.Columns, model.ColumnDescriptor{
			Field:    col.Field,
			Label:    col.Label,
			Type:     string(col.Kind),
			Sortable: col.Sortable,
		})
	}

	for _, f := range e.schema.Filters() {
		fd := model.FilterDescriptor{
			Field:       f.Field,
			Label:       f.Label,
			Type:        string(f.Kind),
			Placeholder: f.Placeholder,
		}
		if f.Kind == table.FilterDropdown {
			if len(f.Options) > 0 {
				fd.Options = optionDescriptors(f.Options)
			} else {
				fd.OptionsEndpoint = fmt.Sprintf("/api/tables/%s/options/%s", e.name, f.Field)
			}
		}
		desc.Filters = append(desc.Filters, fd)
	}

	return desc
}

// Options returns a dropdown's static options, or the distinct values of
// the column when the source can list them. Other sources yield no options.
func (e *Entry[T]) Options(ctx context.Context, field string) ([]string, error) {
	f, ok := e.schema.Filter(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", table.ErrUnknownField, field)
	}
	if f.Kind != table.FilterDropdown {
		return nil, fmt.Errorf("%w: %q", table.ErrNotDropdownFilter, field)
	}
	if len(f.Options) > 0 {
		return f.Options, nil
	}
	if d, ok := e.source.(distincter); ok {
		return d.Distinct(ctx, field)
	}
	return []string{}, nil
}

// Open creates a controller configured with the table settings.
func (e *Entry[T]) Open(opts ...table.Option) table.Session {
	base := []table.Option{
		table.WithPageSize(e.settings.PageSize),
		table.WithDebounce(e.settings.Debounce),
		table.WithLocale(e.settings.Locale),
		table.WithLogger(e.settings.Logger.With(zap.String("table", e.name))),
	}
	if e.settings.ServerSort {
		base = append(base, table.WithServerSort())
	}
	if e.settings.FetchTimeout > 0 {
		base = append(base, table.WithFetchTimeout(e.settings.FetchTimeout))
	}
	if e.settings.Recorder != nil {
		base = append(base, table.WithRecorder(e.settings.Recorder))
	}
	return table.New(e.schema, e.source, append(base, opts...)...)
}

// Catalog is a registry of tables keyed by name.
type Catalog struct {
	mu      sync.RWMutex
	tables  map[string]Table
	clients map[string]HealthChecker
}

// HealthChecker is implemented by the source clients a catalog was built
// with.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables:  make(map[string]Table),
		clients: make(map[string]HealthChecker),
	}
}

// Register adds a table. Names must be unique.
func (c *Catalog) Register(t Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.tables[t.Name()]; dup {
		return fmt.Errorf("catalog: table %q already registered", t.Name())
	}
	c.tables[t.Name()] = t
	return nil
}

// Get looks up a table by name.
func (c *Catalog) Get(name string) (Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Len returns the number of registered tables.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Descriptors returns the descriptors of all tables sorted by name.
func (c *Catalog) Descriptors() []model.TableDescriptor {
	c.mu.RLock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	out := make([]model.TableDescriptor, 0, len(names))
	for _, name := range names {
		t, err := c.Get(name)
		if err != nil {
			continue
		}
		out = append(out, t.Descriptor())
	}
	return out
}

// Options resolves the dropdown options of field in tableName.
func (c *Catalog) Options(ctx context.Context, tableName, field string) ([]model.OptionDescriptor, error) {
	t, err := c.Get(tableName)
	if err != nil {
		return nil, err
	}
	values, err := t.Options(ctx, field)
	if err != nil {
		return nil, err
	}
	return optionDescriptors(values), nil
}

// Sources returns the health checkers of the source clients, by source name.
func (c *Catalog) Sources() map[string]HealthChecker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]HealthChecker, len(c.clients))
	for name, hc := range c.clients {
		out[name] = hc
	}
	return out
}

func optionDescriptors(values []string) []model.OptionDescriptor {
	out := make([]model.OptionDescriptor, len(values))
	for i, v := range values {
		out[i] = model.OptionDescriptor{Label: v, Value: v}
	}
	return out
}
