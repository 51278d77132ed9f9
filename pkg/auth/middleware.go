// pkg/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
)

type claimsKeyType struct{}

var claimsKey = claimsKeyType{}

// ClaimsFromContext возвращает claims, сохраненные AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*interfaces.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*interfaces.Claims)
	return claims, ok
}

// AuthMiddleware промежуточное ПО для проверки Bearer токенов
func AuthMiddleware(authPort interfaces.AuthPort, logger interfaces.LoggerPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			// Проверяем формат токена
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}

			claims, err := authPort.ValidateToken(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				logger.WarnWithContext(r.Context(), "Недействительный токен",
					interfaces.LogField{Key: "error", Value: err.Error()})
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole проверяет наличие определенной роли
func RequireRole(authPort interfaces.AuthPort, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !authPort.HasRole(claims, role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
