package utils

import "math"

// Pagination represents the pagination details.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
}

// CreatePagination creates a Pagination object.
func CreatePagination(totalItems, page, pageSize int) *Pagination {
	if pageSize <= 0 {
		pageSize = 10 // Default page size
	}
	if page <= 0 {
		page = 1 // Default page
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))

	return &Pagination{
		TotalItems:  totalItems,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
	}
}

// Bounds returns the half-open slice range of the current page. Pages past
// the last one are empty.
func (p *Pagination) Bounds() (start, end int) {
	if p.CurrentPage > p.TotalPages {
		return p.TotalItems, p.TotalItems
	}
	start = (p.CurrentPage - 1) * p.PageSize
	end = p.TotalItems
	if p.PageSize < end-start {
		end = start + p.PageSize
	}
	return start, end
}

// Paginate cuts one page out of rows.
func Paginate[T any](rows []T, page, pageSize int) ([]T, *Pagination) {
	p := CreatePagination(len(rows), page, pageSize)
	start, end := p.Bounds()
	return rows[start:end], p
}
