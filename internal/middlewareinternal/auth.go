package middlewareinternal

import (
	"context"
	"net/http"
	"strings"

	"github.com/Evgen-Mutagen/paymentref/internal/core"
	"go.uber.org/zap"
)

type subjectKey struct{}

func JWTAuthMiddleware(tokens core.TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				logger.Debug("Failed to extract token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			subject, err := tokens.ValidateToken(tokenString)
			if err != nil {
				logger.Warn("Invalid token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			logger.Debug("Operator authenticated",
				zap.String("subject", subject),
				zap.String("path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie("jwt")
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", http.ErrNoCookie
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", http.ErrNoCookie
	}

	return parts[1], nil
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok
}
