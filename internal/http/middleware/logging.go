// Package middleware contains the Gin middleware shared by every route.
//
// This file covers request correlation and logging:
//
//   - RequestID propagates or mints the X-Request-ID correlation id.
//   - RedactingLogger builds a request-scoped zerolog.Logger, stores it on both
//     the Gin context and the request context (so services reach it through
//     zerolog.Ctx), and writes one access line per request with PII scrubbed.
//   - Recovery turns panics into the standard 500 envelope.
//   - LoggerFrom returns the request-scoped logger to handlers.
//
// Recommended order: RequestID, RedactingLogger, Recovery.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// maxQueryLogLength caps the logged query string, in bytes.
	maxQueryLogLength = 1024
)

// RequestID reuses the caller's X-Request-ID or generates a UUID, echoing it
// on the response and storing it under "requestID".
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RedactingLogger attaches a request-scoped logger and emits an access log
// line once the handler chain finishes. Query strings and header values are
// passed through the Redactor before they are logged; request and response
// bodies never are.
//
// Level follows the outcome: error for 5xx or recorded gin errors, warn for
// 4xx, info otherwise.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	red := NewRedactor(opts)

	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		query := truncate(red.Query(c.Request.URL.RawQuery), maxQueryLogLength)
		headers := red.Headers(c.Request.Header)

		c.Next()

		status := c.Writer.Status()
		uid, _ := c.Get(userIDKey)

		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", c.Errors.String())
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.
			Str("user_id", asString(uid)).
			Str("query", query).
			Str("remote_ip", red.Scrub(c.ClientIP())).
			Interface("headers", headers).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http_request")
	}
}

// Recovery converts a panic into a logged stack trace and a 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// RedactingLogger did not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.Logger
	return &l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate clips s to max bytes. max <= 0 disables clipping.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
