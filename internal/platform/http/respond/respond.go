// Package respond writes JSON error and message bodies for gin handlers.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/platform/logging"
	"book_catalog/internal/shared/apperr"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// StatusOf maps an error kind to its HTTP status code.
func StatusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with the status for err's kind.
// Unclassified errors are logged and reported as a generic 500.
func Error(c *gin.Context, err error) {
	status := StatusOf(apperr.KindOf(err))
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: apperr.MessageOf(err)})
}

// BindError reports a request binding or validation failure as 400.
func BindError(c *gin.Context, err error) {
	logging.FromContext(c.Request.Context()).Warn("request validation failed", "error", err)
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageResponse{Message: msg})
}
