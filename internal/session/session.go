package session

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Session carries the caller's auth material through a request. It replaces
// ambient global token state: every backend call receives the session
// explicitly. The token is treated as opaque; presence is the only gate
// enforced here, the backend performs real authorization.
type Session struct {
	// Token is the storefront bearer token, forwarded verbatim to the backend.
	Token string

	// AdminToken is the admin-console bearer token, set only on admin routes.
	AdminToken string

	// Admin reports whether the caller presented admin credentials.
	Admin bool

	// Username is read from the token's unverified claims. It is used only to
	// fill request payloads (checkout bodies, audit actor), never to grant
	// access.
	Username string
}

// Authenticated reports whether the session carries a storefront token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// BearerToken returns the token to use for backend calls: the admin token on
// admin sessions, the user token otherwise.
func (s *Session) BearerToken() string {
	if s.Admin && s.AdminToken != "" {
		return s.AdminToken
	}
	return s.Token
}

// UsernameFromToken extracts the username claim from a JWT without verifying
// the signature. The token stays opaque for auth purposes; this mirrors how
// the storefront reads its own display name out of the stored token. Returns
// an empty string for malformed tokens or missing claims.
func UsernameFromToken(token string) string {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}

	for _, key := range []string{"username", "sub", "preferred_username"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

type contextKey struct{}

// NewContext returns a context carrying the session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session from the context, or nil if absent.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
