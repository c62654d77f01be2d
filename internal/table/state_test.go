package table

import "testing"

func TestPageState_counts(t *testing.T) {
	tests := []struct {
		total, size      int
		pages, pageCount int
	}{
		{0, 25, 0, 1},
		{1, 25, 1, 1},
		{25, 25, 1, 1},
		{26, 25, 2, 2},
		{75, 25, 3, 3},
		{10, 0, 0, 1},
	}
	for _, tt := range tests {
		p := PageState{Number: 1, Size: tt.size, TotalItems: tt.total}
		if got := p.TotalPages(); got != tt.pages {
			t.Errorf("TotalPages(%d/%d) = %d, want %d", tt.total, tt.size, got, tt.pages)
		}
		if got := p.PageCount(); got != tt.pageCount {
			t.Errorf("PageCount(%d/%d) = %d, want %d", tt.total, tt.size, got, tt.pageCount)
		}
	}
}

func TestSortSpec_Toggle(t *testing.T) {
	s := SortSpec{Direction: Ascending}

	s = s.Toggle("attack")
	if s != (SortSpec{Column: "attack", Direction: Ascending}) {
		t.Errorf("first toggle = %+v", s)
	}
	s = s.Toggle("attack")
	if s.Direction != Descending {
		t.Errorf("second toggle direction = %q, want desc", s.Direction)
	}
	s = s.Toggle("attack")
	if s.Direction != Ascending {
		t.Errorf("third toggle direction = %q, want asc", s.Direction)
	}
	s = s.Toggle("name")
	if s != (SortSpec{Column: "name", Direction: Ascending}) {
		t.Errorf("new column = %+v", s)
	}
}

func TestState_transitionsDoNotMutate(t *testing.T) {
	s := NewState(25, false)
	next := s.WithRawFilter("name", "Ron")

	if _, ok := s.Filters.Raw["name"]; ok {
		t.Error("WithRawFilter mutated the receiver")
	}
	committed, _ := next.CommitFilter("name")
	if _, ok := next.Filters.Committed["name"]; ok {
		t.Error("CommitFilter mutated the receiver")
	}
	if committed.Filters.Committed["name"] != "Ron" {
		t.Errorf("committed = %v", committed.Filters.Committed)
	}
}

func TestState_CommitFilterResetsPage(t *testing.T) {
	s := NewState(25, false)
	s, _ = s.WithTotal(100)
	s, _ = s.WithPage(3)

	s, changed := s.WithRawFilter("name", "Ron").CommitFilter("name")
	if !changed {
		t.Fatal("CommitFilter changed = false")
	}
	if s.Page.Number != 1 {
		t.Errorf("page = %d, want 1", s.Page.Number)
	}

	s, _ = s.WithPage(2)
	s, changed = s.CommitFilter("name")
	if changed || s.Page.Number != 2 {
		t.Errorf("unchanged commit: changed=%v page=%d", changed, s.Page.Number)
	}
}

func TestState_WithSort(t *testing.T) {
	client := NewState(25, false)
	client, _ = client.WithTotal(100)
	client, _ = client.WithPage(2)
	client, refetch := client.WithSort("name")
	if refetch || client.Page.Number != 2 {
		t.Errorf("client sort: refetch=%v page=%d", refetch, client.Page.Number)
	}
	if client.Query().Sort != nil {
		t.Error("client sort leaked into query")
	}

	server := NewState(25, true)
	server, _ = server.WithTotal(100)
	server, _ = server.WithPage(2)
	server, refetch = server.WithSort("name")
	if !refetch || server.Page.Number != 1 {
		t.Errorf("server sort: refetch=%v page=%d", refetch, server.Page.Number)
	}
	if q := server.Query(); q.Sort == nil || q.Sort.Column != "name" {
		t.Errorf("server query sort = %+v", q.Sort)
	}
}

func TestState_WithTotalClamps(t *testing.T) {
	s := NewState(10, false)
	s, _ = s.WithTotal(50)
	s, _ = s.WithPage(5)

	s, clamped := s.WithTotal(12)
	if !clamped || s.Page.Number != 2 {
		t.Errorf("clamped=%v page=%d, want true 2", clamped, s.Page.Number)
	}

	s, clamped = s.WithTotal(-3)
	if !clamped || s.Page.Number != 1 || s.Page.TotalItems != 0 {
		t.Errorf("negative total: clamped=%v page=%+v", clamped, s.Page)
	}
}

func TestQuery_Values(t *testing.T) {
	q := Query{
		Page:    2,
		Size:    25,
		Filters: map[string]string{"name": "Messi", "nationality": "Argentina"},
		Sort:    &SortSpec{Column: "attack", Direction: Descending},
	}
	v := q.Values()

	want := map[string]string{
		"page":        "2",
		"size":        "25",
		"name":        "Messi",
		"nationality": "Argentina",
		"sort":        "attack,desc",
	}
	for k, w := range want {
		if got := v.Get(k); got != w {
			t.Errorf("%s = %q, want %q", k, got, w)
		}
	}
	if len(v) != len(want) {
		t.Errorf("values = %v", v)
	}
}

func TestState_QueryOmitsEmptyFilters(t *testing.T) {
	s := NewState(25, false)
	s, _ = s.WithDropdown("nationality", "Portugal")
	s, _ = s.WithDropdown("position", "")

	q := s.Query()
	if len(q.Filters) != 1 || q.Filters["nationality"] != "Portugal" {
		t.Errorf("filters = %v", q.Filters)
	}
}
