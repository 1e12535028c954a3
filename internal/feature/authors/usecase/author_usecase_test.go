package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book_catalog/internal/feature/authors/domain/entity"
	"book_catalog/internal/shared/apperr"
	"book_catalog/internal/shared/pagination"
)

// mockAuthorRepository is a function-field mock of AuthorRepository.
type mockAuthorRepository struct {
	CreateFunc   func(a *entity.Author) error
	FindByIDFunc func(id string) (*entity.Author, error)
	FindAllFunc  func(f Filter, p pagination.Params) ([]entity.Author, int64, error)
	UpdateFunc   func(a *entity.Author) error
	DeleteFunc   func(id string) error
}

func (m *mockAuthorRepository) Create(_ context.Context, a *entity.Author) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(a)
	}
	a.ID = "generated-id"
	return nil
}

func (m *mockAuthorRepository) FindByID(_ context.Context, id string) (*entity.Author, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, ErrAuthorNotFound
}

func (m *mockAuthorRepository) FindAll(_ context.Context, f Filter, p pagination.Params) ([]entity.Author, int64, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(f, p)
	}
	return nil, 0, nil
}

func (m *mockAuthorRepository) Update(_ context.Context, a *entity.Author) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(a)
	}
	return nil
}

func (m *mockAuthorRepository) Delete(_ context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}

type mockInvalidator struct {
	calls int
	err   error
}

func (m *mockInvalidator) InvalidateAll(context.Context) error {
	m.calls++
	return m.err
}

func existing() *entity.Author {
	return &entity.Author{ID: "a1", Name: "Ada", Age: 30}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestAuthorUsecase_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      CreateInput
		repoErr error
		wantErr error
	}{
		{"success", CreateInput{Name: "  Ada  ", Age: 30}, nil, nil},
		{"blank name", CreateInput{Name: "   ", Age: 30}, nil, ErrInvalidName},
		{"age too low", CreateInput{Name: "Ada", Age: 0}, nil, ErrInvalidAge},
		{"age too high", CreateInput{Name: "Ada", Age: 151}, nil, ErrInvalidAge},
		{"repository failure", CreateInput{Name: "Ada", Age: 30}, errors.New("db down"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stored *entity.Author
			repo := &mockAuthorRepository{CreateFunc: func(a *entity.Author) error {
				stored = a
				return tt.repoErr
			}}
			uc := NewAuthorUsecase(repo, nil)

			got, err := uc.Create(context.Background(), tt.in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stored, "repository must not be called")
			case tt.repoErr != nil:
				assert.ErrorIs(t, err, tt.repoErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "Ada", got.Name)
				assert.Equal(t, 30, got.Age)
			}
		})
	}
}

func TestAuthorUsecase_FindAll(t *testing.T) {
	t.Parallel()

	minAge := 30
	repo := &mockAuthorRepository{FindAllFunc: func(f Filter, p pagination.Params) ([]entity.Author, int64, error) {
		assert.Equal(t, "ad", f.Name)
		assert.Equal(t, &minAge, f.MinAge)
		assert.Equal(t, pagination.Params{Page: 2, Limit: 10}, p)
		return []entity.Author{{ID: "a11"}, {ID: "a12"}, {ID: "a13"}, {ID: "a14"}, {ID: "a15"}}, 15, nil
	}}

	page, err := NewAuthorUsecase(repo, nil).FindAll(context.Background(), Filter{Name: "ad", MinAge: &minAge}, pagination.Params{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
}

func TestAuthorUsecase_FindOne_NotFound(t *testing.T) {
	t.Parallel()

	_, err := NewAuthorUsecase(&mockAuthorRepository{}, nil).FindOne(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrAuthorNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAuthorUsecase_Update(t *testing.T) {
	t.Parallel()

	t.Run("partial update invalidates cache", func(t *testing.T) {
		var saved *entity.Author
		repo := &mockAuthorRepository{
			FindByIDFunc: func(string) (*entity.Author, error) { return existing(), nil },
			UpdateFunc:   func(a *entity.Author) error { saved = a; return nil },
		}
		cache := &mockInvalidator{}

		got, err := NewAuthorUsecase(repo, cache).Update(context.Background(), "a1", UpdateInput{Age: intPtr(31)})

		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, 31, got.Age)
		assert.Same(t, got, saved)
		assert.Equal(t, 1, cache.calls)
	})

	t.Run("cache failure does not fail the update", func(t *testing.T) {
		repo := &mockAuthorRepository{FindByIDFunc: func(string) (*entity.Author, error) { return existing(), nil }}
		cache := &mockInvalidator{err: errors.New("redis down")}

		_, err := NewAuthorUsecase(repo, cache).Update(context.Background(), "a1", UpdateInput{Name: strPtr("Ada L.")})

		assert.NoError(t, err)
	})

	t.Run("invalid name", func(t *testing.T) {
		repo := &mockAuthorRepository{FindByIDFunc: func(string) (*entity.Author, error) { return existing(), nil }}

		_, err := NewAuthorUsecase(repo, nil).Update(context.Background(), "a1", UpdateInput{Name: strPtr("")})

		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("not found", func(t *testing.T) {
		cache := &mockInvalidator{}
		_, err := NewAuthorUsecase(&mockAuthorRepository{}, cache).Update(context.Background(), "x", UpdateInput{})

		assert.ErrorIs(t, err, ErrAuthorNotFound)
		assert.Zero(t, cache.calls)
	})
}

func TestAuthorUsecase_Remove(t *testing.T) {
	t.Parallel()

	t.Run("returns deleted author", func(t *testing.T) {
		var deleted string
		repo := &mockAuthorRepository{
			FindByIDFunc: func(string) (*entity.Author, error) { return existing(), nil },
			DeleteFunc:   func(id string) error { deleted = id; return nil },
		}
		cache := &mockInvalidator{}

		got, err := NewAuthorUsecase(repo, cache).Remove(context.Background(), "a1")

		require.NoError(t, err)
		assert.Equal(t, "a1", got.ID)
		assert.Equal(t, "a1", deleted)
		assert.Equal(t, 1, cache.calls)
	})

	t.Run("author with books", func(t *testing.T) {
		repo := &mockAuthorRepository{
			FindByIDFunc: func(string) (*entity.Author, error) { return existing(), nil },
			DeleteFunc:   func(string) error { return ErrAuthorHasBooks },
		}

		_, err := NewAuthorUsecase(repo, nil).Remove(context.Background(), "a1")

		assert.ErrorIs(t, err, ErrAuthorHasBooks)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}
