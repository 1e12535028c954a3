// Package entity defines the domain models for the authors feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author is a writer referenced by zero or more books.
type Author struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:255;not null;index"`
	Age       int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (a *Author) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
