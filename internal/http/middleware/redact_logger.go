// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger of the service. It
// attaches a request-scoped zerolog.Logger to both the Gin context and the
// request context, and scrubs personal identifiers from request metadata
// before emitting the access line.
//
// Redacted:
//   - Norwegian national identity numbers (11 digits) and aktør ids (13 digits)
//   - Bearer tokens that leak into query strings or custom headers
//   - Email addresses
//   - Sensitive headers (Authorization, Cookie, Set-Cookie, plus custom)
//
// Bodies are never logged.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// built-in sensitive headers ("Authorization", "Cookie", "Set-Cookie").
type RedactOptions struct {
	MaskHeaders []string
}

var (
	bearerRE = regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-._~+/]+=*`)
	emailRE  = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// aktør ids are 13 digits, fødselsnummer and d-nummer 11.
	identRE = regexp.MustCompile(`\b(?:\d{13}|\d{11})\b`)
)

// redact scrubs tokens, emails and person identifiers from s.
// Tokens go first since they may contain digit runs.
func redact(s string) string {
	if s == "" {
		return s
	}
	out := bearerRE.ReplaceAllString(s, "Bearer [REDACTED]")
	out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
	out = identRE.ReplaceAllString(out, "[REDACTED:ident]")
	return out
}

// RedactingLogger returns a Gin middleware that logs HTTP requests and
// responses with sensitive values scrubbed.
//
// Behavior:
//   - Attaches a logger carrying request_id, method and route to the Gin
//     context (see LoggerFrom) and to the request context (zerolog.Ctx), so
//     services and upstream clients log with the same correlation fields.
//   - Logs method, route, query string, status, response size, latency and
//     request headers after the handler completes.
//   - Logs at INFO by default, WARN for 4xx and ERROR for 5xx responses.
//   - Health and metrics probes are logged at DEBUG.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := truncate(redact(c.Request.URL.RawQuery), maxQueryLogLength)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		reqID := RequestIDFrom(c)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}

		lg := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("route", path).
			Logger()
		c.Set(ctxKeyLogger, &lg)
		c.Request = c.Request.WithContext(lg.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		// Saksbehandler may have enriched the logger further down the chain.
		out := LoggerFrom(c)

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = out.Error()
		case status >= 400:
			ev = out.Warn()
		case path == "/health" || path == "/metrics":
			ev = out.Debug()
		default:
			ev = out.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", redact(c.Errors.String()))
		}

		ev.
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
