package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/render"
)

// BasicAuth gates the admin endpoints. An empty password disables the check
// entirely; that is the documented development-mode bypass, announced once
// at startup by the caller.
func BasicAuth(username, password string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if password == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
			if !ok || !userMatch || !passMatch {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]interface{}{
					"success": false,
					"error":   ErrorCodeUnauthorized,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
