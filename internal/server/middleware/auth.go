package middleware

import (
	"net/http"
	"strings"

	"user-management-backend/internal/security"
	"user-management-backend/internal/server/httpx"
)

const bearerPrefix = "bearer "

// Auth returns middleware that validates the Bearer access token from the
// Authorization header and sets user_id, email, session_id in the request
// context. Missing, malformed, expired, and invalid tokens all produce 401
// with a WWW-Authenticate challenge.
func Auth(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			claims, err := tokens.ValidateAccess(token)
			if err != nil {
				httpx.RespondError(w, http.StatusUnauthorized, "could not validate credentials")
				return
			}
			ctx := WithIdentity(r.Context(), claims.UserID, claims.Subject, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
