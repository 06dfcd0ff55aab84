// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key support for the mutating journal
// endpoints. A request carrying a key that already completed successfully for
// the same operation and journal entry is answered with the stored status and
// body; the handler, and therefore every archive mutation, is skipped.
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay marks a response served from the idempotency store.
const HeaderIdempotentReplay = "Idempotent-Replay"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay was served
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by Idempotency. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the response was served from the store.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// StoredResponse is a previously completed answer.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore persists completed answers keyed by
// (operation, journal entry id, key). Get returns nil, nil on a miss.
type IdempotencyStore interface {
	Get(ctx context.Context, operasjon, journalpostID, key string, now time.Time) (*StoredResponse, error)
	Save(ctx context.Context, operasjon, journalpostID, key string, resp StoredResponse) error
}

// IdempotencyOptions configures Idempotency.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
	// Operasjon names the idempotent operation of a request, or returns ""
	// when the request is not covered.
	Operasjon func(c *gin.Context) string
	// Param is the route parameter holding the journal entry id. Defaults to "jpid".
	Param string
}

// Idempotency validates the Idempotency-Key header on covered operations,
// replays stored answers and records new 2xx answers.
//
// Behavior:
//   - Uncovered operation or no header: the middleware is a no-op.
//   - Invalid header: 400 with a compact error body.
//   - Stored answer: written as is with Idempotent-Replay: true; rate
//     limiting and the handler are skipped.
//   - Otherwise the handler runs and a 2xx answer is saved. Store failures
//     are logged and never fail the request.
func Idempotency(opts IdempotencyOptions, store IdempotencyStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}
	param := opts.Param
	if param == "" {
		param = "jpid"
	}

	return func(c *gin.Context) {
		op := ""
		if opts.Operasjon != nil {
			op = opts.Operasjon(c)
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if op == "" || key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if store == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		jpID := c.Param(param)
		lg := LoggerFrom(c)

		prev, err := store.Get(ctx, op, jpID, key, time.Now().UTC())
		if err != nil {
			lg.Warn().Err(err).Str("operasjon", op).Msg("idempotency lookup failed")
		}
		if prev != nil {
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
			c.Header(HeaderIdempotentReplay, "true")
			if len(prev.Body) == 0 {
				c.AbortWithStatus(prev.Status)
				return
			}
			c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
			c.Abort()
			return
		}

		rec := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < 200 || status > 299 {
			return
		}
		if err := store.Save(ctx, op, jpID, key, StoredResponse{Status: status, Body: rec.buf.Bytes()}); err != nil {
			lg.Warn().Err(err).Str("operasjon", op).Msg("idempotency save failed")
		}
	}
}

// capturingWriter copies the response body while writing it through.
type capturingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
