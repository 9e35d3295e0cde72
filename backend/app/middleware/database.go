package middleware

import (
	"net/http"

	"bookshelf/backend/app/response"
)

// ConnectionChecker reports whether the database is reachable.
type ConnectionChecker interface {
	Connected() bool
}

// RequireDatabase answers 503 with offline:true while the database is down.
func RequireDatabase(db ConnectionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !db.Connected() {
				response.Unavailable(w, "Database unavailable")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
