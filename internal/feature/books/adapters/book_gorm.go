// Package adapters provides the repository implementation for the books feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	authorentity "book_catalog/internal/feature/authors/domain/entity"
	"book_catalog/internal/feature/books/domain/entity"
	"book_catalog/internal/feature/books/usecase"
	"book_catalog/internal/platform/db"
	"book_catalog/internal/shared/pagination"
)

// bookGorm is the GORM implementation of usecase.BookRepository.
type bookGorm struct {
	db *gorm.DB
}

var _ usecase.BookRepository = (*bookGorm)(nil)

func NewBookRepository(db *gorm.DB) *bookGorm {
	return &bookGorm{db: db}
}

func mapWriteError(err error) error {
	if db.IsForeignKeyViolation(err) {
		return usecase.ErrUnknownAuthor.Wrap(err)
	}
	return err
}

func (r *bookGorm) Create(ctx context.Context, b *entity.Book) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(b).Error; err != nil {
		return mapWriteError(err)
	}
	return r.loadAuthor(ctx, b)
}

func (r *bookGorm) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	var b entity.Book
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *bookGorm) FindAll(ctx context.Context, f usecase.Filter, p pagination.Params) ([]entity.Book, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Book{})
	if f.Name != "" {
		q = db.ContainsFold(q, "name", f.Name)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entity.Book
	if err := db.Paginate(q.Preload("Author").Order("created_at ASC, id ASC"), p).Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// Update saves the mutable columns and reloads the author, which may have changed.
func (r *bookGorm) Update(ctx context.Context, b *entity.Book) error {
	res := r.db.WithContext(ctx).Model(b).
		Select("name", "description", "price", "author_id", "updated_at").
		Omit("Author").
		Updates(b)
	if res.Error != nil {
		return mapWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrBookNotFound
	}
	return r.loadAuthor(ctx, b)
}

func (r *bookGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Book{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrBookNotFound
	}
	return nil
}

func (r *bookGorm) loadAuthor(ctx context.Context, b *entity.Book) error {
	if b.Author != nil && b.Author.ID == b.AuthorID {
		return nil
	}
	var a authorentity.Author
	if err := r.db.WithContext(ctx).Where("id = ?", b.AuthorID).First(&a).Error; err != nil {
		return err
	}
	b.Author = &a
	return nil
}
