package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"book_catalog/internal/shared/apperr"
)

// TokenType distinguishes access from refresh tokens inside the claims.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// ErrInvalidToken is returned for any signature, expiry or type mismatch.
var ErrInvalidToken = apperr.Authentication("invalid token")

// Payload is the identity carried by both token kinds.
type Payload struct {
	UserID string
	Role   string
}

// Claims is the signed body of a token.
type Claims struct {
	UserID string    `json:"id"`
	Role   string    `json:"role"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
// Access and refresh tokens use distinct secrets and lifetimes.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer creates an Issuer with separate secrets and lifetimes per token kind.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssueAccessToken signs a short-lived token for the auth guard.
func (i *Issuer) IssueAccessToken(p Payload) (string, error) {
	return i.sign(p, AccessToken)
}

// IssueRefreshToken signs a long-lived token that can only be exchanged for a new pair.
func (i *Issuer) IssueRefreshToken(p Payload) (string, error) {
	return i.sign(p, RefreshToken)
}

func (i *Issuer) sign(p Payload, kind TokenType) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: p.UserID,
		Role:   p.Role,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl(kind))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret(kind))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify parses tokenStr with the secret of kind and returns its payload.
func (i *Issuer) Verify(tokenStr string, kind TokenType) (Payload, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		// Only HMAC is accepted; this rejects "none" and RSA/ECDSA key confusion.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret(kind), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Payload{}, ErrInvalidToken.Wrap(err)
	}
	if !token.Valid || claims.Type != kind || claims.UserID == "" {
		return Payload{}, ErrInvalidToken
	}
	return Payload{UserID: claims.UserID, Role: claims.Role}, nil
}

func (i *Issuer) secret(kind TokenType) []byte {
	if kind == RefreshToken {
		return i.refreshSecret
	}
	return i.accessSecret
}

func (i *Issuer) ttl(kind TokenType) time.Duration {
	if kind == RefreshToken {
		return i.refreshTTL
	}
	return i.accessTTL
}
