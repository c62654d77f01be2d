package table

import (
	"strings"
	"testing"
)

type row struct {
	ID   string
	Name string
}

func rowColumns() []Column[row] {
	return []Column[row]{
		StringColumn("id", "ID", func(r row) string { return r.ID }),
		StringColumn("name", "Name", func(r row) string { return r.Name }),
	}
}

func TestNewSchema_validation(t *testing.T) {
	tests := []struct {
		name    string
		idField string
		columns []Column[row]
		filters []Filter
		wantErr string
	}{
		{"valid", "id", rowColumns(), []Filter{TextFilter("name", "Name", "")}, ""},
		{"missing id", "key", rowColumns(), nil, "id field"},
		{"duplicate column", "id", append(rowColumns(), rowColumns()[0]), nil, "duplicate column"},
		{"empty field", "id", append(rowColumns(), Column[row]{Kind: KindString}), nil, "has no field"},
		{"no accessor", "id", append(rowColumns(), Column[row]{Field: "x", Kind: KindString}), nil, "no accessor"},
		{"filter without column", "id", rowColumns(), []Filter{TextFilter("club", "Club", "")}, "does not reference"},
		{"duplicate filter", "id", rowColumns(), []Filter{TextFilter("name", "", ""), DropdownFilter("name", "")}, "duplicate filter"},
		{"unknown kind", "id", rowColumns(), []Filter{{Field: "name", Kind: "slider"}}, "unknown kind"},
		{
			"reserved parameter",
			"id",
			append(rowColumns(), StringColumn("page", "Page", func(r row) string { return "" })),
			[]Filter{TextFilter("page", "Page", "")},
			"paging parameter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.idField, tt.columns, tt.filters)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewSchema() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewSchema() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_Predicate(t *testing.T) {
	rows := []player{
		{ID: 1, Name: "Lionel Messi", Nationality: "Argentina"},
		{ID: 2, Name: "Cristiano Ronaldo", Nationality: "Portugal"},
		{ID: 3, Name: "Ángel Di María", Nationality: "Argentina"},
	}

	tests := []struct {
		name    string
		filters map[string]string
		want    []int
	}{
		{"no filters", nil, []int{1, 2, 3}},
		{"case-insensitive substring", map[string]string{"name": "MESS"}, []int{1}},
		{"dropdown equality", map[string]string{"nationality": "Argentina"}, []int{1, 3}},
		{"dropdown is not substring", map[string]string{"nationality": "Argent"}, nil},
		{"combined", map[string]string{"name": "i", "nationality": "Portugal"}, []int{2}},
		{"empty value ignored", map[string]string{"name": ""}, []int{1, 2, 3}},
		{"unicode folding", map[string]string{"name": "ángel"}, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := playerSchema.Predicate(tt.filters)
			var got []int
			for _, r := range rows {
				if match(r) {
					got = append(got, r.ID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("matched %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("matched %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestColumn_Text(t *testing.T) {
	p := player{ID: 7, Attack: 81.5, Active: true}
	id, _ := playerSchema.Column("id")
	attack, _ := playerSchema.Column("attack")
	active, _ := playerSchema.Column("active")

	if got := id.Text(p); got != "7" {
		t.Errorf("id text = %q", got)
	}
	if got := attack.Text(p); got != "81.5" {
		t.Errorf("attack text = %q", got)
	}
	if got := active.Text(p); got != "true" {
		t.Errorf("active text = %q", got)
	}
}
