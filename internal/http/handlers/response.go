// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint: the error
// envelope, the Warning header that carries the failure reason to the front
// end, and the success writers.
//
// Conventions:
//   - 404 answers have an empty body; the reason is only in the Warning header.
//   - Other errors return an ErrorResponse with a stable `code`.
//   - 5xx answers are logged with the request-scoped logger.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/navikt/bidrag-dokument-arkiv/internal/http/middleware"
)

const maxWarningLen = 500

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"ugyldig_avvik"`
	// Human-readable reason, also sent as the Warning header
	Message string `json:"message" example:"ugyldig avvik: FEILFORE_SAK er ikke gyldig for JOARK-1"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.Header("Warning", warning(msg))
	if status == http.StatusNotFound {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail() used by the router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr translates err with classify and aborts the request.
func failErr(c *gin.Context, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && code == ErrCodeInternal {
		middleware.LoggerFrom(c).Error().Err(err).Msg("unexpected error")
		msg = "internal server error"
	}
	fail(c, status, code, msg)
}

// warning makes msg safe for a single header line.
func warning(msg string) string {
	msg = strings.Join(strings.Fields(msg), " ")
	if len(msg) > maxWarningLen {
		msg = msg[:maxWarningLen]
	}
	return msg
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
