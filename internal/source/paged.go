package source

import (
	"context"
	"errors"

	"github.com/pitabwire/touchline/internal/table"
	"github.com/pitabwire/touchline/model"
)

// springPage is the page envelope returned by paginated sources.
type springPage[T any] struct {
	Content       []T  `json:"content"`
	TotalElements *int `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Size          int  `json:"size"`
	Number        int  `json:"number"`
}

// PagedSource delegates paging and filtering to the remote endpoint:
//
//	GET <path>?page=<0-indexed>&size=<n>[&<field>=<value>]*[&sort=<col>,<dir>]
type PagedSource[T any] struct {
	client *Client
	path   string
}

// NewPaged creates a paginated source for path.
func NewPaged[T any](client *Client, path string) *PagedSource[T] {
	return &PagedSource[T]{client: client, path: path}
}

// Fetch requests one page.
func (s *PagedSource[T]) Fetch(ctx context.Context, q table.Query) (table.Page[T], error) {
	var page springPage[T]
	if err := s.client.GetJSON(ctx, s.path, q.Values(), &page); err != nil {
		return table.Page[T]{}, err
	}
	if page.TotalElements == nil {
		return table.Page[T]{}, model.NewDecodeError(errors.New("page has no totalElements"))
	}
	items := page.Content
	if items == nil {
		items = []T{}
	}
	return table.Page[T]{Items: items, TotalItems: *page.TotalElements}, nil
}
