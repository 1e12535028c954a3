// Package usecase implements the business logic for the users feature.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"book_catalog/internal/feature/users/domain/entity"
	jwtmw "book_catalog/internal/platform/jwt"
	"book_catalog/internal/platform/logging"
	"book_catalog/internal/shared/pagination"
)

const (
	minPasswordLength = 8

	otpSubject = "Your OTP Code"
)

// dummyHash keeps the login path comparing a bcrypt hash even for unknown emails.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for users.
type UserRepository interface {
	// Create returns ErrUserExists when the email is already taken.
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, f Filter, p pagination.Params) ([]entity.User, int64, error)
	// MarkVerified flips is_verified only if it is still false and reports whether it did.
	MarkVerified(ctx context.Context, id string) (bool, error)
	SetRole(ctx context.Context, id string, role entity.Role) error
	SetRefreshToken(ctx context.Context, id string, token *string) error
	// RotateRefreshToken replaces old with next only if old is still the stored token.
	RotateRefreshToken(ctx context.Context, id, old, next string) (bool, error)
	// SetPassword stores a new hash and clears the refresh token.
	SetPassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer interface {
	IssueAccessToken(p jwtmw.Payload) (string, error)
	IssueRefreshToken(p jwtmw.Payload) (string, error)
	Verify(token string, kind jwtmw.TokenType) (jwtmw.Payload, error)
}

// OTP issues and checks time-windowed one-time passwords bound to an email.
type OTP interface {
	Issue(email string) (string, error)
	Verify(email, code string) bool
	Period() time.Duration
}

// Mailer delivers the OTP email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Filter narrows FindAll. Zero fields are ignored.
type Filter struct {
	Name  string
	Email string
	Role  entity.Role
	// SortBy is one of name, email or role.
	SortBy string
	// SortOrder is asc or desc.
	SortOrder string
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Tokens is an access/refresh pair returned by Login and Refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// UserUsecase implements account registration, verification, login and administration.
type UserUsecase struct {
	users  UserRepository
	tokens TokenIssuer
	otp    OTP
	mailer Mailer
}

// NewUserUsecase creates a UserUsecase.
func NewUserUsecase(users UserRepository, tokens TokenIssuer, otp OTP, mailer Mailer) *UserUsecase {
	return &UserUsecase{users: users, tokens: tokens, otp: otp, mailer: mailer}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an unverified user and mails it an OTP.
// A mail failure is logged and never fails the registration.
func (u *UserUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	code, err := u.otp.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue otp: %w", err)
	}

	user := &entity.User{
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Role:     entity.RoleUser,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.sendOTP(ctx, email, code)
	return user, nil
}

// VerifyOTP marks the user verified when code is valid for the current or previous window.
func (u *UserUsecase) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	email = normalizeEmail(email)
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.IsVerified {
		return MsgAlreadyVerified, nil
	}
	if !u.otp.Verify(email, strings.TrimSpace(code)) {
		return "", ErrInvalidOTP
	}

	flipped, err := u.users.MarkVerified(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if !flipped {
		return MsgAlreadyVerified, nil
	}
	logging.FromContext(ctx).Info("user verified", "user_id", user.ID)
	return MsgVerified, nil
}

// ResendOTP sends a fresh code to an account that is not verified yet.
func (u *UserUsecase) ResendOTP(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.IsVerified {
		return MsgAlreadyVerified, nil
	}

	code, err := u.otp.Issue(email)
	if err != nil {
		return "", fmt.Errorf("failed to issue otp: %w", err)
	}
	u.sendOTP(ctx, email, code)
	return MsgOTPSent, nil
}

func (u *UserUsecase) sendOTP(ctx context.Context, email, code string) {
	body := fmt.Sprintf("Your OTP code is: %s\n\nIt will expire in %d minutes.", code, int(u.otp.Period().Minutes()))
	if err := u.mailer.Send(ctx, email, otpSubject, body); err != nil {
		logging.FromContext(ctx).Error("failed to send otp mail", "email", email, "error", err)
	}
}

// Login checks the credentials of a verified user and issues a token pair.
// The refresh token is stored so that only the latest one can be exchanged.
func (u *UserUsecase) Login(ctx context.Context, email, password string) (Tokens, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		}
		return Tokens{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return Tokens{}, ErrWrongCredentials
	}
	if !user.IsVerified {
		return Tokens{}, ErrNotVerified
	}

	tokens, err := u.issue(user)
	if err != nil {
		return Tokens{}, err
	}
	if err := u.users.SetRefreshToken(ctx, user.ID, &tokens.RefreshToken); err != nil {
		return Tokens{}, err
	}
	return tokens, nil
}

// Refresh exchanges the latest refresh token for a new pair and revokes the old one.
func (u *UserUsecase) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	p, err := u.tokens.Verify(refreshToken, jwtmw.RefreshToken)
	if err != nil {
		return Tokens{}, err
	}
	user, err := u.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Tokens{}, jwtmw.ErrInvalidToken
		}
		return Tokens{}, err
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return Tokens{}, ErrRefreshTokenRevoked
	}

	tokens, err := u.issue(user)
	if err != nil {
		return Tokens{}, err
	}
	rotated, err := u.users.RotateRefreshToken(ctx, user.ID, refreshToken, tokens.RefreshToken)
	if err != nil {
		return Tokens{}, err
	}
	if !rotated {
		return Tokens{}, ErrRefreshTokenRevoked
	}
	return tokens, nil
}

// issue signs a pair carrying the user's current role.
func (u *UserUsecase) issue(user *entity.User) (Tokens, error) {
	p := jwtmw.Payload{UserID: user.ID, Role: string(user.Role)}
	access, err := u.tokens.IssueAccessToken(p)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := u.tokens.IssueRefreshToken(p)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// UpdatePassword replaces the password after checking the old one.
// Stored refresh tokens are revoked.
func (u *UserUsecase) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return ErrWrongCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return u.users.SetPassword(ctx, user.ID, string(hashed))
}

// PromoteToAdmin grants the ADMIN role to the user with callerID.
// Tokens issued before the promotion keep the old role until they are refreshed.
func (u *UserUsecase) PromoteToAdmin(ctx context.Context, callerID string) (string, *entity.User, error) {
	user, err := u.users.FindByID(ctx, callerID)
	if err != nil {
		return "", nil, err
	}
	if user.IsAdmin() {
		return MsgAlreadyAdmin, user, nil
	}

	if err := u.users.SetRole(ctx, user.ID, entity.RoleAdmin); err != nil {
		return "", nil, err
	}
	user.Role = entity.RoleAdmin
	logging.FromContext(ctx).Info("user promoted to admin", "user_id", user.ID)
	return MsgPromoted, user, nil
}

// FindAll returns a filtered, sorted page of users.
func (u *UserUsecase) FindAll(ctx context.Context, f Filter, p pagination.Params) (pagination.Page[entity.User], error) {
	rows, total, err := u.users.FindAll(ctx, f, p)
	if err != nil {
		return pagination.Page[entity.User]{}, err
	}
	return pagination.NewPage(rows, total, p), nil
}

// FindOne returns a user by id or ErrUserNotFound.
func (u *UserUsecase) FindOne(ctx context.Context, id string) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// Delete removes a user and returns a confirmation message.
func (u *UserUsecase) Delete(ctx context.Context, id string) (string, error) {
	if _, err := u.users.FindByID(ctx, id); err != nil {
		return "", err
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return "", err
	}
	return MsgDeleted, nil
}
