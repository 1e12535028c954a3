// Package entity defines the domain models for the books feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authorentity "book_catalog/internal/feature/authors/domain/entity"
)

// Book is a catalog entry owned by exactly one author.
// Deleting an author that still has books is restricted by the foreign key.
type Book struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:255;not null;index"`
	Description string `gorm:"type:text;not null;default:''"`
	// Price is a whole amount between MinPrice and MaxPrice.
	Price     int                  `gorm:"not null;index"`
	AuthorID  string               `gorm:"size:36;not null;index"`
	Author    *authorentity.Author `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	MinPrice = 10
	MaxPrice = 100000
)

// BeforeCreate assigns a UUID when the caller did not set one.
func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
