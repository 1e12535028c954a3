package jwtmw

import (
	"strings"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/platform/http/respond"
	"book_catalog/internal/shared/apperr"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// ErrTokenNotProvided is returned when the Authorization header has no bearer token.
var ErrTokenNotProvided = apperr.Authentication("token not provided")

// TokenVerifier verifies a token of the given kind.
type TokenVerifier interface {
	Verify(token string, kind TokenType) (Payload, error)
}

// AuthRequired returns a Gin middleware that validates the bearer access token
// and stores the caller's id and role in the context.
func AuthRequired(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(auth, "Bearer ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || tokenStr == "" {
			respond.Error(c, ErrTokenNotProvided)
			return
		}

		p, err := v.Verify(tokenStr, AccessToken)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.Set(ContextUserID, p.UserID)
		c.Set(ContextRole, p.Role)
		c.Next()
	}
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}
