package model

// TableDescriptor is the resolved table metadata sent to the frontend.
type TableDescriptor struct {
	Name            string             `json:"name"`
	Title           string             `json:"title"`
	Columns         []ColumnDescriptor `json:"columns"`
	Filters         []FilterDescriptor `json:"filters,omitempty"`
	SessionEndpoint string             `json:"session_endpoint"`
	DataMode        string             `json:"data_mode"`
	SortMode        string             `json:"sort_mode"`
	PageSize        int                `json:"page_size"`
	DebounceMs      int64              `json:"debounce_ms"`
}

// ColumnDescriptor describes a visible table column.
type ColumnDescriptor struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Sortable bool   `json:"sortable"`
}

// FilterDescriptor describes a resolved filter control.
type FilterDescriptor struct {
	Field       string             `json:"field"`
	Label       string             `json:"label"`
	Type        string             `json:"type"`
	Placeholder string             `json:"placeholder,omitempty"`
	Options     []OptionDescriptor `json:"options,omitempty"`
	// OptionsEndpoint is set for dropdowns whose options come from the data.
	OptionsEndpoint string `json:"options_endpoint,omitempty"`
}

// OptionDescriptor is a resolved option for dropdown filters.
type OptionDescriptor struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SessionDescriptor is returned when a table session is opened.
type SessionDescriptor struct {
	ID    string `json:"id"`
	Table string `json:"table"`
	View  any    `json:"view"`
}

// OptionsResponse is the response of the dropdown options endpoint.
type OptionsResponse struct {
	Field   string             `json:"field"`
	Options []OptionDescriptor `json:"options"`
}
