// Package auth extracts the case handler identity from the bearer token and
// carries it through the request context.
//
// Tokens are verified by the platform in front of this service; only the
// claims are read here.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrIngenIdent is returned when the token carries no case handler ident,
// which is the case for machine-to-machine tokens.
var ErrIngenIdent = errors.New("token mangler NAVident")

var identClaims = []string{"NAVident", "navident"}

type ctxKey struct{}

// IdentFraBearer returns the case handler ident from an Authorization header
// value ("Bearer <jwt>").
func IdentFraBearer(authorization string) (string, error) {
	token := strings.TrimSpace(authorization)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", ErrIngenIdent
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	for _, c := range identClaims {
		if v, ok := claims[c].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", ErrIngenIdent
}

// MedSaksbehandler returns a context carrying the case handler ident.
func MedSaksbehandler(ctx context.Context, ident string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

// Saksbehandler returns the case handler ident from ctx.
func Saksbehandler(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	return v, ok && v != ""
}

type tokenKey struct{}

// MedToken returns a context carrying the caller's Authorization header
// value. Outbound clients forward it unchanged.
func MedToken(ctx context.Context, authorization string) context.Context {
	return context.WithValue(ctx, tokenKey{}, authorization)
}

// Token returns the Authorization header value stored by MedToken.
func Token(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}
