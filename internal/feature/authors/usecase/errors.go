package usecase

import "book_catalog/internal/shared/apperr"

var (
	// ErrAuthorNotFound is returned when no author has the requested ID.
	ErrAuthorNotFound = apperr.NotFound("Author not found")

	// ErrAuthorHasBooks is returned when deleting an author that books still reference.
	ErrAuthorHasBooks = apperr.Validation("author still has books and cannot be deleted")

	ErrInvalidName = apperr.Validation("name must not be empty")
	ErrInvalidAge  = apperr.Validationf("age must be between %d and %d", minAge, maxAge)
)
