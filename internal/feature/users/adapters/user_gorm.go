// Package adapters provides the repository implementation for the users feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"book_catalog/internal/feature/users/domain/entity"
	"book_catalog/internal/feature/users/usecase"
	"book_catalog/internal/platform/db"
	"book_catalog/internal/shared/pagination"
)

// sortColumns whitelists the columns a list may be ordered by.
var sortColumns = map[string]string{
	"name":  "name",
	"email": "email",
	"role":  "role",
}

// userGorm is the GORM implementation of usecase.UserRepository.
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create maps a unique index violation on email to usecase.ErrUserExists.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrUserExists.Wrap(err)
		}
		return err
	}
	return nil
}

func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userGorm) first(ctx context.Context, cond string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userGorm) FindAll(ctx context.Context, f usecase.Filter, p pagination.Params) ([]entity.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.User{})
	if f.Name != "" {
		q = db.ContainsFold(q, "name", f.Name)
	}
	if f.Email != "" {
		q = db.ContainsFold(q, "email", f.Email)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "name"
	}
	desc := f.SortOrder == "desc"
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})

	var users []entity.User
	if err := db.Paginate(q, p).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userGorm) MarkVerified(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND is_verified = ?", id, false).
		Update("is_verified", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userGorm) SetRole(ctx context.Context, id string, role entity.Role) error {
	return r.update(ctx, id, map[string]any{"role": role})
}

func (r *userGorm) SetRefreshToken(ctx context.Context, id string, token *string) error {
	return r.update(ctx, id, map[string]any{"refresh_token": token})
}

func (r *userGorm) RotateRefreshToken(ctx context.Context, id, old, next string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND refresh_token = ?", id, old).
		Update("refresh_token", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userGorm) SetPassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]any{"password": hash, "refresh_token": nil})
}

func (r *userGorm) update(ctx context.Context, id string, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func (r *userGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
