// Package auth resolves the caller of a request from a bearer token or the
// session cookie.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/VladKvetkin/gofood/internal/services/jwttoken"
)

const TokenCookieName = "token"

// Identity is the caller resolved from a valid credential.
type Identity struct {
	UserID       string
	Role         string
	DriverID     string
	RestaurantID string
}

// Error is an authentication failure that carries the HTTP status it maps to.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrAuthRequired = &Error{StatusCode: http.StatusUnauthorized, Message: "Authentication required"}
	ErrInvalidToken = &Error{StatusCode: http.StatusUnauthorized, Message: "Invalid or expired token"}
)

type TokenParser interface {
	Parse(string) (jwttoken.Claims, error)
}

type Guard struct {
	tokens TokenParser
}

func NewGuard(tokens TokenParser) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate reads the credential from the Authorization header, falling back
// to the token cookie.
func (g *Guard) Authenticate(req *http.Request) (Identity, error) {
	token := bearerToken(req)
	if token == "" {
		cookie, err := req.Cookie(TokenCookieName)
		if err != nil || cookie.Value == "" {
			return Identity{}, ErrAuthRequired
		}

		token = cookie.Value
	}

	claims, err := g.tokens.Parse(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:       claims.UserID,
		Role:         claims.Role,
		DriverID:     claims.DriverID,
		RestaurantID: claims.RestaurantID,
	}, nil
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

type identityKey struct{}

type result struct {
	identity Identity
	err      error
}

// WithResult stores the outcome of Authenticate on the context so handlers can
// decide when in their own precondition order to reject the request.
func WithResult(ctx context.Context, identity Identity, err error) context.Context {
	return context.WithValue(ctx, identityKey{}, result{identity: identity, err: err})
}

// FromContext returns the caller stored by WithResult or the failure that
// prevented resolving one.
func FromContext(ctx context.Context) (Identity, error) {
	res, ok := ctx.Value(identityKey{}).(result)
	if !ok {
		return Identity{}, ErrAuthRequired
	}

	return res.identity, res.err
}
