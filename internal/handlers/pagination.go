package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dias221467/Friend_Manager/internal/models"
)

// PaginationMeta defines the structure for pagination metadata.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// PaginatedResponse defines the structure for a paginated list of any type.
type PaginatedResponse[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// NewPaginatedResponse converts a page of T into its response shape using convert.
func NewPaginatedResponse[T, R any](page *models.Page[T], convert func(T) R) PaginatedResponse[R] {
	data := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		data = append(data, convert(item))
	}
	return PaginatedResponse[R]{
		Data: data,
		Meta: PaginationMeta{
			TotalItems:  page.Total,
			TotalPages:  page.TotalPages(),
			CurrentPage: page.Page,
			PageSize:    page.Limit,
		},
	}
}

// parsePagination reads ?page= and ?limit=. Missing values take the defaults,
// out-of-range values are clamped and non-numeric values are rejected.
func parsePagination(r *http.Request) (models.Pagination, error) {
	page, err := intQuery(r, "page", 1)
	if err != nil {
		return models.Pagination{}, err
	}
	limit, err := intQuery(r, "limit", models.DefaultPageSize)
	if err != nil {
		return models.Pagination{}, err
	}
	return models.NewPagination(page, limit), nil
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q", key, raw)
	}
	return n, nil
}
