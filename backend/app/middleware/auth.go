package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtutil "bookshelf/backend/app/jwt"
	"bookshelf/backend/app/response"
)

type ctxKey int

const ClaimsKey ctxKey = 1

// Auth checks bearer tokens. A missing token is 401; a token that fails
// verification is 403.
type Auth struct{ Signer *jwtutil.Signer }

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}

func withClaims(r *http.Request, c *jwtutil.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ClaimsKey, c))
}

func (a *Auth) AuthenticateToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Fail(w, http.StatusUnauthorized, "Access token required")
			return
		}
		claims, err := a.Signer.Parse(token)
		if err != nil {
			response.Fail(w, http.StatusForbidden, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	})
}

// RequireAdmin expects AuthenticateToken or OptionalAuth to have run first.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			response.Fail(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !claims.IsAdmin() {
			response.Fail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuth attaches claims when a valid token is present and never rejects.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := a.Signer.Parse(token); err == nil {
				r = withClaims(r, claims)
			}
		}
		next.ServeHTTP(w, r)
	})
}
