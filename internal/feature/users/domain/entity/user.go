// Package entity defines the domain entities for the users feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleUser}

// User represents a registered account.
type User struct {
	ID string `gorm:"primaryKey;size:36"`

	// Email is stored trimmed and lower-cased. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash. Plaintext is never stored.
	Password string `gorm:"size:255;not null"`

	Name string `gorm:"size:255;not null;index"`
	Role Role   `gorm:"size:16;not null;default:USER;index"`

	// IsVerified only ever moves from false to true.
	IsVerified bool `gorm:"not null;default:false"`

	// RefreshToken is the latest refresh token issued to the user.
	// Nil after a password change, which revokes every session.
	RefreshToken *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
