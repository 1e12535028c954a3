// Package dto defines data transfer objects for the authors HTTP API.
package dto

import (
	"time"

	"book_catalog/internal/feature/authors/domain/entity"
)

type CreateAuthorReq struct {
	Name string `json:"name" binding:"required,max=255"`
	Age  *int   `json:"age" binding:"required"`
}

// UpdateAuthorReq is a partial update; omitted fields keep their value.
type UpdateAuthorReq struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
	Age  *int    `json:"age"`
}

type AuthorRes struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewAuthorRes(a entity.Author) AuthorRes {
	return AuthorRes{
		ID:        a.ID,
		Name:      a.Name,
		Age:       a.Age,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
