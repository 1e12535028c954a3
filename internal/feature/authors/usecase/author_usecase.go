// Package usecase implements the business logic for the authors feature.
package usecase

import (
	"context"
	"log/slog"
	"strings"

	"book_catalog/internal/feature/authors/domain/entity"
	"book_catalog/internal/shared/pagination"
)

const (
	minAge = 1
	maxAge = 150
)

// AuthorRepository abstracts the persistence layer for authors.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AuthorRepository interface {
	Create(ctx context.Context, a *entity.Author) error
	// FindByID returns ErrAuthorNotFound when the row does not exist.
	FindByID(ctx context.Context, id string) (*entity.Author, error)
	// FindAll returns one page of authors matching f and the total match count.
	FindAll(ctx context.Context, f Filter, p pagination.Params) ([]entity.Author, int64, error)
	Update(ctx context.Context, a *entity.Author) error
	// Delete returns ErrAuthorHasBooks when books still reference the author.
	Delete(ctx context.Context, id string) error
}

// CacheInvalidator drops cached reads that embed author data.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Filter narrows FindAll. Zero fields are ignored.
type Filter struct {
	// Name is a case-insensitive substring.
	Name string
	// MinAge keeps authors with age >= MinAge.
	MinAge *int
}

// CreateInput is the data needed to create an author.
type CreateInput struct {
	Name string
	Age  int
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name *string
	Age  *int
}

// AuthorUsecase provides CRUD operations over authors.
type AuthorUsecase struct {
	repo  AuthorRepository
	cache CacheInvalidator
}

// NewAuthorUsecase creates an AuthorUsecase. cache may be nil.
func NewAuthorUsecase(repo AuthorRepository, cache CacheInvalidator) *AuthorUsecase {
	return &AuthorUsecase{repo: repo, cache: cache}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

func validateAge(age int) error {
	if age < minAge || age > maxAge {
		return ErrInvalidAge
	}
	return nil
}

// Create validates and stores a new author.
func (u *AuthorUsecase) Create(ctx context.Context, in CreateInput) (*entity.Author, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateAge(in.Age); err != nil {
		return nil, err
	}

	a := &entity.Author{Name: name, Age: in.Age}
	if err := u.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// FindAll returns a filtered page of authors.
func (u *AuthorUsecase) FindAll(ctx context.Context, f Filter, p pagination.Params) (pagination.Page[entity.Author], error) {
	rows, total, err := u.repo.FindAll(ctx, f, p)
	if err != nil {
		return pagination.Page[entity.Author]{}, err
	}
	return pagination.NewPage(rows, total, p), nil
}

// FindOne returns an author by id or ErrAuthorNotFound.
func (u *AuthorUsecase) FindOne(ctx context.Context, id string) (*entity.Author, error) {
	return u.repo.FindByID(ctx, id)
}

// Update applies a partial update and drops cached books.
func (u *AuthorUsecase) Update(ctx context.Context, id string, in UpdateInput) (*entity.Author, error) {
	a, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return nil, err
		}
		a.Name = name
	}
	if in.Age != nil {
		if err := validateAge(*in.Age); err != nil {
			return nil, err
		}
		a.Age = *in.Age
	}

	if err := u.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	u.invalidate(ctx)
	return a, nil
}

// Remove deletes the author and returns the deleted record.
func (u *AuthorUsecase) Remove(ctx context.Context, id string) (*entity.Author, error) {
	a, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	u.invalidate(ctx)
	return a, nil
}

// invalidate is best effort; cached book reads also expire on their own TTL.
func (u *AuthorUsecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.InvalidateAll(ctx); err != nil {
		slog.WarnContext(ctx, "book cache invalidation failed", "error", err)
	}
}
