package usecase

import (
	"book_catalog/internal/feature/books/domain/entity"
	"book_catalog/internal/shared/apperr"
)

var (
	// ErrBookNotFound is returned when no book has the requested ID.
	ErrBookNotFound = apperr.NotFound("Book not found")

	// ErrUnknownAuthor is returned when authorId does not reference an existing author.
	ErrUnknownAuthor = apperr.Validation("authorId does not reference an existing author")

	ErrInvalidName  = apperr.Validation("name must not be empty")
	ErrInvalidPrice = apperr.Validationf("price must be between %d and %d", entity.MinPrice, entity.MaxPrice)
)
