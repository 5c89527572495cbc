package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It checks the caller's role against the request path and method using Casbin.
func Authorizer(e casbin.IEnforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userInfo := GetUserInfo(r.Context())

			allowed, err := e.Enforce(userInfo.Role, r.URL.EscapedPath(), r.Method)
			if err != nil {
				WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Authorization error"})
				return
			}

			if !allowed {
				status := http.StatusForbidden
				if userInfo.Anonymous() {
					status = http.StatusUnauthorized
				}
				WriteJSON(w, status, map[string]string{"error": http.StatusText(status)})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
