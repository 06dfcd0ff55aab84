// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds correlation and panic handling:
//
//   - RequestID() gives every request a correlation id. The id of a NAV
//     caller (X-Request-ID or Nav-Call-Id) is reused when it is sane.
//   - Recovery() turns panics into the JSON error envelope and logs them
//     with the request-scoped logger.
//   - LoggerFrom() returns the logger attached by RedactingLogger.
//
// Compose as RequestID() → RedactingLogger() → Recovery().
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	callIDHeader    = "Nav-Call-Id"
	ctxKeyLogger    = "logger"

	// maxCallIDLength bounds inbound correlation ids; longer ones are replaced.
	maxCallIDLength = 128
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
)

// RequestID attaches a correlation id to the request, the Gin context and
// the X-Request-ID response header. X-Request-ID wins over Nav-Call-Id; an
// absent, oversized or non-printable id is replaced by a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := callID(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = callID(c.GetHeader(callIDHeader))
		}
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// callID returns s trimmed, or "" when it cannot be logged and echoed safely.
func callID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxCallIDLength {
		return ""
	}
	for _, r := range s {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return ""
		}
	}
	return s
}

// RequestIDFrom returns the correlation id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Recovery converts a panic into a 500. When nothing has been written yet the
// standard envelope is returned:
//
//	{ "request_id": "...", "code": "internal_error", "message": "internal server error" }
//
// The panic value and stack go to the request-scoped logger.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// RedactingLogger has not run. Never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// truncate caps s at max bytes without splitting a rune and marks the cut
// with an ellipsis. max <= 0 disables truncation.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
