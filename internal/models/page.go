package models

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps Offset within int for every allowed limit.
	MaxPage = math.MaxInt / MaxPageSize
)

// Pagination selects a window of a result set. Pages are 1-based.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps page and limit to usable values.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset is the number of records to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one window of a larger result set.
type Page[T any] struct {
	Items []T
	Total int64
	Pagination
}

// TotalPages is the number of pages needed to cover Total.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}
