package pagination

import (
	"net/http"
	"strconv"
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:   1,
		Limit:  20,
		Offset: 0,
	}
}

// FromRequest extracts "page" and "limit" query parameters from an HTTP
// request. Invalid or out-of-range values fall back to the defaults; limit is
// capped at 100.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= 100 {
			p.Limit = v
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Result wraps a paginated response.
type Result[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"totalCount"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewResult creates a paginated result.
func NewResult[T any](items []T, totalCount int, params Params) Result[T] {
	totalPages := totalCount / params.Limit
	if totalCount%params.Limit > 0 {
		totalPages++
	}

	return Result[T]{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
