// Package handlers holds the Gin handlers for the webhook, lead and auth
// endpoints.
//
// JSON endpoints answer with a `success` flag. Failures use ErrorResponse,
// written through fail(), which also logs every 5xx with the request-scoped
// logger:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "Lead not found"
//	}
//
// The webhook endpoints are the exception: the provider expects text/plain
// bodies, so they never use these helpers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/http/middleware"
)

// ErrorResponse is the failure envelope of every JSON endpoint.
type ErrorResponse struct {
	// Always false
	Success bool `json:"success" example:"false"`
	// Echo of X-Request-ID, for correlating with server logs
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Message string `json:"message" example:"Lead not found"`
}

// fail aborts with an ErrorResponse. Statuses >= 500 are logged.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for callers outside this package (router fallbacks).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
