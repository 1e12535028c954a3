package usecase

import "book_catalog/internal/shared/apperr"

var (
	// ErrUserExists is returned when registering an email that is already taken.
	ErrUserExists = apperr.Validation("User already exists!")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = apperr.NotFound("User not found!")

	// ErrWrongCredentials is returned when the password does not match.
	ErrWrongCredentials = apperr.Validation("Wrong credentials!")

	// ErrNotVerified is returned when an unverified user tries to log in.
	ErrNotVerified = apperr.Authorization("You should activate your account before login!")

	// ErrInvalidOTP covers both a wrong code and an expired one.
	ErrInvalidOTP = apperr.Validation("Invalid or expired OTP")

	// ErrRefreshTokenRevoked is returned when a refresh token is valid but no longer the latest one.
	ErrRefreshTokenRevoked = apperr.Authentication("refresh token has been revoked")

	ErrWeakPassword = apperr.Validationf("password must be at least %d characters long", minPasswordLength)
	ErrInvalidName  = apperr.Validation("name must not be empty")
)

const (
	MsgOTPSent         = "OTP sent to your email"
	MsgAlreadyVerified = "User already verified"
	MsgVerified        = "Email verified successfully!"
	MsgAlreadyAdmin    = "User is already an Admin"
	MsgPromoted        = "User successfully promoted to Admin"
	MsgPasswordUpdated = "Password updated successfully"
	MsgDeleted         = "User deleted successfully"
)
