package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int64, bool, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

type AuthMiddleware struct {
	sso TokenValidator
	log *slog.Logger
}

func NewAuthMiddleware(sso TokenValidator, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{sso: sso, log: log}
}

type contextKey string

const (
	UserIDKey  = contextKey("userID")
	IsAdminKey = contextKey("isAdmin")
)

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(IsAdminKey).(bool)
	return isAdmin
}

func (m *AuthMiddleware) ValidateToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "middleware.auth.ValidateToken"

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		userID, valid, err := m.sso.ValidateToken(r.Context(), token)
		if err != nil || !valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		isAdmin, err := m.sso.IsAdmin(r.Context(), userID)
		if err != nil {
			m.log.Error("admin check failed", slog.String("operation", op), slog.String("error", err.Error()))
			http.Error(w, "failed to resolve permissions", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, IsAdminKey, isAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after ValidateToken.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdminFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
