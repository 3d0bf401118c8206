// Package pagination carries page requests from query strings down to the
// store and wraps list results with their totals.
package pagination

import (
	"gorm.io/gorm"
)

// Page size bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in missing values and caps the page size, so a request
// built in code without binding still stays bounded.
func (p *PageRequest) Defaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Normalized returns a copy with Defaults applied.
func (p PageRequest) Normalized() PageRequest {
	p.Defaults()
	return p
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	}
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Map converts every item of p with fn, keeping the page metadata.
func Map[T, U any](p PageResponse[T], fn func(*T) U) PageResponse[U] {
	data := make([]U, len(p.Data))
	for i := range p.Data {
		data[i] = fn(&p.Data[i])
	}
	return NewPageResponse(data, p.Page, p.PageSize, p.TotalItems)
}

// Slice returns the window of items selected by req. A nil req returns
// items unchanged.
func Slice[T any](items []T, req *PageRequest) []T {
	if req == nil {
		return items
	}
	r := req.Normalized()
	start := r.Offset()
	if start >= len(items) {
		return nil
	}
	return items[start:min(start+r.PageSize, len(items))]
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	req.Defaults()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}
