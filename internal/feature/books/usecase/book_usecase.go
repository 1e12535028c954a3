// Package usecase implements the business logic for the books feature.
package usecase

import (
	"context"
	"strings"

	"book_catalog/internal/feature/books/domain/entity"
	"book_catalog/internal/shared/pagination"
)

// BookRepository abstracts the persistence layer for books.
// Every read returns books with their Author loaded.
type BookRepository interface {
	// Create inserts b and reloads it with its author.
	// It returns ErrUnknownAuthor when b.AuthorID matches no author.
	Create(ctx context.Context, b *entity.Book) error
	FindByID(ctx context.Context, id string) (*entity.Book, error)
	FindAll(ctx context.Context, f Filter, p pagination.Params) ([]entity.Book, int64, error)
	Update(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
}

// Filter narrows FindAll. Zero fields are ignored.
type Filter struct {
	// Name is a case-insensitive substring.
	Name string
	// MinPrice keeps books with price >= MinPrice.
	MinPrice *int
	// AuthorID is an exact match.
	AuthorID string
}

// CreateInput is the data needed to create a book.
type CreateInput struct {
	Name        string
	Description string
	Price       int
	AuthorID    string
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *int
	AuthorID    *string
}

// BookUsecase implements the book catalog operations.
type BookUsecase struct {
	repo BookRepository
}

// NewBookUsecase creates a BookUsecase.
func NewBookUsecase(repo BookRepository) *BookUsecase {
	return &BookUsecase{repo: repo}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

func validatePrice(price int) error {
	if price < entity.MinPrice || price > entity.MaxPrice {
		return ErrInvalidPrice
	}
	return nil
}

// Create validates and stores a new book. The result embeds its author.
func (u *BookUsecase) Create(ctx context.Context, in CreateInput) (*entity.Book, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	b := &entity.Book{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		AuthorID:    in.AuthorID,
	}
	if err := u.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// FindAll returns a filtered page of books with their authors.
func (u *BookUsecase) FindAll(ctx context.Context, f Filter, p pagination.Params) (pagination.Page[entity.Book], error) {
	rows, total, err := u.repo.FindAll(ctx, f, p)
	if err != nil {
		return pagination.Page[entity.Book]{}, err
	}
	return pagination.NewPage(rows, total, p), nil
}

// FindOne returns a book by id or ErrBookNotFound.
func (u *BookUsecase) FindOne(ctx context.Context, id string) (*entity.Book, error) {
	return u.repo.FindByID(ctx, id)
}

// Update applies a partial update.
func (u *BookUsecase) Update(ctx context.Context, id string, in UpdateInput) (*entity.Book, error) {
	b, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return nil, err
		}
		b.Name = name
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return nil, err
		}
		b.Price = *in.Price
	}
	if in.AuthorID != nil && *in.AuthorID != b.AuthorID {
		b.AuthorID = *in.AuthorID
		b.Author = nil
	}

	if err := u.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Remove deletes the book and returns the deleted record.
func (u *BookUsecase) Remove(ctx context.Context, id string) (*entity.Book, error) {
	b, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return b, nil
}
