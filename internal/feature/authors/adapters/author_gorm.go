// Package adapters provides the repository implementation for the authors feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"book_catalog/internal/feature/authors/domain/entity"
	"book_catalog/internal/feature/authors/usecase"
	"book_catalog/internal/platform/db"
	"book_catalog/internal/shared/pagination"
)

// authorGorm is the GORM implementation of usecase.AuthorRepository.
type authorGorm struct {
	db *gorm.DB
}

var _ usecase.AuthorRepository = (*authorGorm)(nil)

func NewAuthorRepository(db *gorm.DB) *authorGorm {
	return &authorGorm{db: db}
}

func (r *authorGorm) Create(ctx context.Context, a *entity.Author) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *authorGorm) FindByID(ctx context.Context, id string) (*entity.Author, error) {
	var a entity.Author
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAuthorNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *authorGorm) FindAll(ctx context.Context, f usecase.Filter, p pagination.Params) ([]entity.Author, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Author{})
	if f.Name != "" {
		q = db.ContainsFold(q, "name", f.Name)
	}
	if f.MinAge != nil {
		q = q.Where("age >= ?", *f.MinAge)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []entity.Author
	if err := db.Paginate(q.Order("created_at ASC, id ASC"), p).Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

func (r *authorGorm) Update(ctx context.Context, a *entity.Author) error {
	res := r.db.WithContext(ctx).Model(a).Select("name", "age", "updated_at").Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrAuthorNotFound
	}
	return nil
}

// Delete removes the author. A foreign key violation means books still reference it.
func (r *authorGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Author{})
	if res.Error != nil {
		if db.IsForeignKeyViolation(res.Error) {
			return usecase.ErrAuthorHasBooks.Wrap(res.Error)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrAuthorNotFound
	}
	return nil
}
