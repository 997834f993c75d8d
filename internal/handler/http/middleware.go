package http

import (
	"net/http"
	"strings"

	"github.com/LQT2201/Book-UIT/internal/session"
	"github.com/LQT2201/Book-UIT/pkg/httputil"
)

// adminTokenHeader carries the admin console token. It is kept separate from
// the storefront bearer token so an admin browsing the shop keeps both
// identities, and backend calls pick the right one per operation.
const adminTokenHeader = "X-Admin-Token"

// SessionFromRequest builds the request session from auth headers and stores
// it in the context. Unauthenticated requests still get a session; guards
// further down decide what they may do.
func SessionFromRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := &session.Session{
			Token:      bearerToken(r),
			AdminToken: r.Header.Get(adminTokenHeader),
		}
		sess.Admin = sess.AdminToken != ""
		if tok := sess.BearerToken(); tok != "" {
			sess.Username = session.UsernameFromToken(tok)
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// RequireAuth rejects requests without a signed-in session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.Authenticated() {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without an admin session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.Admin {
			httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "admin access required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
