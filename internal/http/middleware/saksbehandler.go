package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/navikt/bidrag-dokument-arkiv/internal/auth"
)

// ctxKeyUserID is the Gin context key read by the rate limiter and logger.
const ctxKeyUserID = "userID"

// Saksbehandler reads the case handler ident from the bearer token and makes
// it available under "userID" in the Gin context and through auth in the
// request context. The raw Authorization value is kept for outbound calls.
//
// Tokens are verified by the platform in front of the service. A missing or
// machine token leaves the request anonymous; it is never rejected here.
func Saksbehandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.Next()
			return
		}
		ctx := auth.MedToken(c.Request.Context(), authz)
		if ident, err := auth.IdentFraBearer(authz); err == nil {
			c.Set(ctxKeyUserID, ident)
			ctx = auth.MedSaksbehandler(ctx, ident)
			lg := LoggerFrom(c).With().Str("saksbehandler", ident).Logger()
			c.Set(ctxKeyLogger, &lg)
			ctx = lg.WithContext(ctx)
		} else {
			LoggerFrom(c).Debug().Err(err).Msg("no case handler ident in token")
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
