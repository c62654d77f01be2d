package table

import "github.com/pitabwire/touchline/model"

// ErrorView is the user-visible form of a fetch failure.
type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func errorView(fe *model.FetchError) *ErrorView {
	if fe == nil {
		return nil
	}
	return &ErrorView{Code: fe.Kind, Message: fe.Message, Status: fe.Status}
}

// PageView is the pagination metadata rendered by the presentation layer.
type PageView struct {
	Number      int  `json:"number"`
	Size        int  `json:"size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	PageCount   int  `json:"page_count"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

func pageView(p PageState) PageView {
	return PageView{
		Number:      p.Number,
		Size:        p.Size,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages(),
		PageCount:   p.PageCount(),
		HasPrevious: p.Number > 1,
		HasNext:     p.Number < p.PageCount(),
	}
}

// PageNumbers lists the page controls to render, 1 through PageCount.
func (p PageView) PageNumbers() []int {
	pages := make([]int, p.PageCount)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// ViewModel is an immutable snapshot of the controller's state.
type ViewModel[T any] struct {
	Rows    []T         `json:"rows"`
	Loading bool        `json:"loading"`
	Error   *ErrorView  `json:"error,omitempty"`
	Page    PageView    `json:"page"`
	Sort    SortSpec    `json:"sort"`
	Filters FilterState `json:"filters"`
	Epoch   uint64      `json:"epoch"`
}

// Snapshot is a ViewModel with rows erased to any, for callers that handle
// several entity types.
type Snapshot = ViewModel[any]

// Erase converts the view model into a Snapshot.
func (vm ViewModel[T]) Erase() Snapshot {
	rows := make([]any, len(vm.Rows))
	for i, r := range vm.Rows {
		rows[i] = r
	}
	return Snapshot{
		Rows:    rows,
		Loading: vm.Loading,
		Error:   vm.Error,
		Page:    vm.Page,
		Sort:    vm.Sort,
		Filters: vm.Filters,
		Epoch:   vm.Epoch,
	}
}
