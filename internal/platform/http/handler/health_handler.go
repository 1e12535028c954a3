// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/platform/logging"
)

// Health handles /healthz. It never touches dependencies.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Ready returns a /readyz handler that runs every check with a short timeout.
// Any failure yields 503 with the name of the failing dependency.
func Ready(checks map[string]CheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logging.FromContext(ctx).Warn("readiness check failed", "dependency", name, "error", err)
				failed[name] = "unavailable"
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
