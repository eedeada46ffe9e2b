package model

import "gorm.io/gorm"

// DefaultPageSize is used when the caller omits or zeroes the size param.
const DefaultPageSize = 10

// PageResponse is the envelope for every paginated listing.
type PageResponse[T any] struct {
	Page          int   `json:"page"`
	PageSize      int   `json:"page_size"`
	TotalPages    int   `json:"total_pages"`
	TotalElements int64 `json:"total_elements"`
	Data          []T   `json:"data"`
}

// NormalizePage clamps 1-indexed page params to sane values.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return page, size
}

// Paginate is a gorm scope applying 1-indexed offset pagination.
func Paginate(page, size int) func(*gorm.DB) *gorm.DB {
	page, size = NormalizePage(page, size)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * size).Limit(size)
	}
}

// NewPageResponse assembles the envelope from a fetched page and its total.
func NewPageResponse[T any](page, size int, total int64, data []T) PageResponse[T] {
	page, size = NormalizePage(page, size)
	totalPages := int((total + int64(size) - 1) / int64(size))
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Page:          page,
		PageSize:      size,
		TotalPages:    totalPages,
		TotalElements: total,
		Data:          data,
	}
}
