package backend

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKeyUserID struct{}

// userID retrieves the authenticated user ID from the request context.
func userID(ctx context.Context) string {
	id, ok := ctx.Value(contextKeyUserID{}).(string)
	if !ok {
		return ""
	}
	return id
}

// requireAuth rejects requests without a valid bearer token and stores the
// authenticated user ID on the context.
func requireAuth(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing token", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "No token")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyUserID{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
