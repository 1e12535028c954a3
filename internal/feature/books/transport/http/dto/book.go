// Package dto defines data transfer objects for the books HTTP API.
package dto

import (
	"time"

	authordto "book_catalog/internal/feature/authors/transport/http/dto"
	"book_catalog/internal/feature/books/domain/entity"
)

type CreateBookReq struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Price       *int   `json:"price" binding:"required,min=10,max=100000"`
	AuthorID    string `json:"authorId" binding:"required,uuid"`
}

// UpdateBookReq is a partial update; omitted fields keep their value.
type UpdateBookReq struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Price       *int    `json:"price" binding:"omitempty,min=10,max=100000"`
	AuthorID    *string `json:"authorId" binding:"omitempty,uuid"`
}

type BookRes struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       int                  `json:"price"`
	AuthorID    string               `json:"authorId"`
	Author      *authordto.AuthorRes `json:"author,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func NewBookRes(b entity.Book) BookRes {
	res := BookRes{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		AuthorID:    b.AuthorID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Author != nil {
		a := authordto.NewAuthorRes(*b.Author)
		res.Author = &a
	}
	return res
}
