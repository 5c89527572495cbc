package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-wiki-store/internal/auth"
	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"
)

// TokenResolver resolves a session token to its account.
type TokenResolver interface {
	LookupByToken(ctx context.Context, token string) (*data.User, error)
}

// TokenFromRequest extracts the token of an "Authorization: Token <t>" header.
func TokenFromRequest(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Token" {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticator resolves the caller from the Authorization header and puts
// the result in the request context. Missing or unknown tokens leave the
// caller anonymous; authorization decides what they may do.
func Authenticator(resolver TokenResolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.LookupByToken(r.Context(), token)
			switch {
			case errors.Is(err, data.ErrNotFound):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				log.Error(err, "Failed to resolve session token")
				WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
				return
			}

			id := user.ID
			info := &UserInfo{Subject: user.Username, UserID: &id, Role: auth.RoleEditor}
			next.ServeHTTP(w, r.WithContext(SetUserInfo(r.Context(), info)))
		})
	}
}
