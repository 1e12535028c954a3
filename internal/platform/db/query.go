package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"book_catalog/internal/shared/pagination"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsFold adds a case-insensitive substring predicate on column.
// LIKE wildcards in value are matched literally. On SQLite the column is folded
// by the fold function registered in OpenSQLite.
func ContainsFold(q *gorm.DB, column, value string) *gorm.DB {
	lower := "LOWER"
	if q.Dialector != nil && q.Dialector.Name() == "sqlite" {
		lower = foldFunc
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
	return q.Where(lower+"("+column+`) LIKE ? ESCAPE '\'`, pattern)
}

// Paginate applies offset and limit.
func Paginate(q *gorm.DB, p pagination.Params) *gorm.DB {
	return q.Offset(p.Offset()).Limit(p.Limit)
}

// IsUniqueViolation reports a duplicate key from any supported driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == pgUniqueViolation {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports a broken reference from any supported driver.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || pgCode(err) == pgForeignKeyViolation {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
