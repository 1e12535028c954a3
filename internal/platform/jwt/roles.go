package jwtmw

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/platform/http/respond"
	"book_catalog/internal/shared/apperr"
)

// ErrRoleNotFound is returned when an authenticated request carries no role.
var ErrRoleNotFound = apperr.Authentication("role not found")

// Policy lists the roles permitted on a route. The zero Policy allows everyone.
type Policy struct {
	Roles []string
}

// Allows reports whether role satisfies the policy.
func (p Policy) Allows(role string) bool {
	return len(p.Roles) == 0 || slices.Contains(p.Roles, role)
}

// Authorize returns a Gin middleware enforcing p. It must run after AuthRequired.
func Authorize(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(p.Roles) == 0 {
			c.Next()
			return
		}

		role := c.GetString(ContextRole)
		if role == "" {
			respond.Error(c, ErrRoleNotFound)
			return
		}
		if !p.Allows(role) {
			respond.Error(c, apperr.Authorizationf(
				"you are not allowed to do this, only one of these roles can: %s", strings.Join(p.Roles, ", ")))
			return
		}
		c.Next()
	}
}
