package source

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pitabwire/touchline/internal/table"
)

const collectionKey = "collection"

// CollectionSource loads a whole collection from an unpaginated endpoint
// (a bare JSON array) and pages, filters and sorts it in process. The
// collection is shared by every controller using the source.
type CollectionSource[T any] struct {
	client *Client
	path   string
	schema *table.Schema[T]
	sorter *table.Sorter[T]
	locale language.Tag
	logger *zap.Logger

	// cache is nil when caching is disabled.
	cache *cache.Cache
	group singleflight.Group
}

// NewCollection creates a collection source for path. A positive ttl keeps
// the loaded collection for that long; otherwise every fetch reloads it.
func NewCollection[T any](client *Client, path string, schema *table.Schema[T], ttl time.Duration, locale language.Tag) *CollectionSource[T] {
	s := &CollectionSource[T]{
		client: client,
		path:   path,
		schema: schema,
		sorter: table.NewSorter(schema, locale),
		locale: locale,
		logger: client.logger,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Fetch filters the collection with q's filters, sorts it when q carries a
// sort and returns the requested page. Pages past the end are empty.
func (s *CollectionSource[T]) Fetch(ctx context.Context, q table.Query) (table.Page[T], error) {
	items, err := s.load(ctx)
	if err != nil {
		return table.Page[T]{}, err
	}

	match := s.schema.Predicate(q.Filters)
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			matched = append(matched, item)
		}
	}
	if q.Sort != nil {
		matched = s.sorter.Sort(matched, *q.Sort)
	}

	total := len(matched)
	if q.Size <= 0 {
		return table.Page[T]{Items: matched, TotalItems: total}, nil
	}
	start := min(q.Page*q.Size, total)
	end := min(start+q.Size, total)
	return table.Page[T]{Items: slices.Clone(matched[start:end]), TotalItems: total}, nil
}

// Distinct returns the distinct values of field across the collection in
// collation order. Empty values are skipped.
func (s *CollectionSource[T]) Distinct(ctx context.Context, field string) ([]string, error) {
	col, ok := s.schema.Column(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", table.ErrUnknownField, field)
	}
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	values := []string{}
	for _, item := range items {
		v := col.Text(item)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	collate.New(s.locale).SortStrings(values)
	return values, nil
}

// Invalidate drops the cached collection.
func (s *CollectionSource[T]) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(collectionKey)
	}
}

// load returns the collection, collapsing concurrent loads into one
// request. The shared request is detached from the caller's cancellation
// so one controller closing does not fail the others; the client timeout
// still bounds it.
func (s *CollectionSource[T]) load(ctx context.Context) ([]T, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(collectionKey); ok {
			return v.([]T), nil
		}
	}

	v, err, shared := s.group.Do(collectionKey, func() (any, error) {
		var items []T
		if err := s.client.GetJSON(context.WithoutCancel(ctx), s.path, nil, &items); err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		if s.cache != nil {
			s.cache.SetDefault(collectionKey, items)
		}
		s.logger.Debug("collection loaded",
			zap.String("source", s.client.Name()),
			zap.String("path", s.path),
			zap.Int("items", len(items)),
		)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("collection load shared", zap.String("path", s.path))
	}
	return v.([]T), nil
}
