// Package pagination implements offset/limit paging shared by the list endpoints.
package pagination

import (
	"strconv"
	"strings"

	"book_catalog/internal/shared/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads raw page and limit query values.
// Empty values fall back to the defaults; limits above MaxLimit are clamped.
func Parse(page, limit string) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}

	if s := strings.TrimSpace(page); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Params{}, apperr.Validation("page must be a positive integer")
		}
		p.Page = n
	}
	if s := strings.TrimSpace(limit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Params{}, apperr.Validation("limit must be a positive integer")
		}
		p.Limit = min(n, MaxLimit)
	}
	return p, nil
}

// Page is one page of a filtered result set.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// NewPage assembles a page from the rows and the total count of the filtered set.
func NewPage[T any](data []T, total int64, p Params) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Map converts the rows of a page, keeping the paging metadata.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(in.Data))
	for _, v := range in.Data {
		out = append(out, fn(v))
	}
	return Page[U]{Data: out, Total: in.Total, Page: in.Page, TotalPages: in.TotalPages}
}
