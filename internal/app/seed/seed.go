// Package seed loads catalog fixtures through the author and book usecases.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	authorentity "book_catalog/internal/feature/authors/domain/entity"
	authorusecase "book_catalog/internal/feature/authors/usecase"
	bookentity "book_catalog/internal/feature/books/domain/entity"
	bookusecase "book_catalog/internal/feature/books/usecase"
	"book_catalog/internal/platform/logging"
)

type AuthorCreator interface {
	Create(ctx context.Context, in authorusecase.CreateInput) (*authorentity.Author, error)
}

type BookCreator interface {
	Create(ctx context.Context, in bookusecase.CreateInput) (*bookentity.Book, error)
}

// File is the on-disk fixture format.
type File struct {
	Authors []Author `json:"authors"`
}

type Author struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Books []Book `json:"books"`
}

type Book struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
}

// Result counts the rows created.
type Result struct {
	Authors int
	Books   int
}

// Decode parses a fixture file, rejecting unknown fields.
func Decode(r io.Reader) (File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

// Load creates every author and then its books. It stops at the first failure.
func Load(ctx context.Context, authors AuthorCreator, books BookCreator, f File) (Result, error) {
	var res Result
	log := logging.FromContext(ctx)

	for i, a := range f.Authors {
		created, err := authors.Create(ctx, authorusecase.CreateInput{Name: a.Name, Age: a.Age})
		if err != nil {
			return res, fmt.Errorf("authors[%d] %q: %w", i, a.Name, err)
		}
		res.Authors++

		for j, b := range a.Books {
			_, err := books.Create(ctx, bookusecase.CreateInput{
				Name:        b.Name,
				Description: b.Description,
				Price:       b.Price,
				AuthorID:    created.ID,
			})
			if err != nil {
				return res, fmt.Errorf("authors[%d].books[%d] %q: %w", i, j, b.Name, err)
			}
			res.Books++
		}
		log.Debug("author seeded", "author_id", created.ID, "books", len(a.Books))
	}
	return res, nil
}
