// Package dto defines data transfer objects for the users HTTP API.
package dto

import (
	"time"

	"book_catalog/internal/feature/users/domain/entity"
)

// RegisterReq is the body of POST /users/register.
type RegisterReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,max=255"`
}

// VerifyOTPReq is the body of POST /users/verify-otp.
type VerifyOTPReq struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type ResendOTPReq struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginReq is the body of POST /users/login.
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdatePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TokenRes is returned by login and refresh.
type TokenRes struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserRes never carries the password hash or refresh token.
type UserRes struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type PromoteRes struct {
	Message string  `json:"message"`
	User    UserRes `json:"user"`
}

// NewUserRes converts a user without its password hash or refresh token.
func NewUserRes(u entity.User) UserRes {
	return UserRes{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
