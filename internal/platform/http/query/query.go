// Package query parses list endpoint query parameters into typed values.
package query

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/shared/apperr"
	"book_catalog/internal/shared/pagination"
)

// Page reads the page and limit parameters.
func Page(c *gin.Context) (pagination.Params, error) {
	return pagination.Parse(c.Query("page"), c.Query("limit"))
}

// OptionalInt reads key as an integer. An absent or empty value yields nil.
func OptionalInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validationf("%s must be an integer", key)
	}
	return &n, nil
}

// OneOf reads key and checks it against allowed. An empty value yields fallback.
func OneOf(c *gin.Context, key, fallback string, allowed ...string) (string, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	for _, a := range allowed {
		if raw == a {
			return raw, nil
		}
	}
	return "", apperr.Validationf("%s must be one of: %s", key, strings.Join(allowed, ", "))
}
