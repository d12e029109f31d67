package domain

// Pageable requests one page of results. Page numbers start at 1.
// A zero Size disables pagination.
type Pageable struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// IsPaged reports whether the request asks for a bounded page.
func (p Pageable) IsPaged() bool {
	return p.Size > 0
}

// Offset returns the index of the first element of the page.
func (p Pageable) Offset() int {
	if p.Page <= 1 || p.Size <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

// Page is one page of results.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"page_number"`
	PageElements  int   `json:"page_elements"`
	TotalElements int64 `json:"total_elements"`
}

// NewPage slices all elements into the requested page.
func NewPage[T any](all []T, p Pageable) Page[T] {
	total := int64(len(all))
	if !p.IsPaged() {
		return Page[T]{Content: all, PageNumber: 1, PageElements: len(all), TotalElements: total}
	}

	start := min(p.Offset(), len(all))
	end := min(start+p.Size, len(all))
	content := all[start:end]
	return Page[T]{
		Content:       content,
		PageNumber:    max(p.Page, 1),
		PageElements:  len(content),
		TotalElements: total,
	}
}
