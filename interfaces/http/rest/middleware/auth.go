package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tripchat/pkg/auth"
	"tripchat/pkg/common"
)

// Authenticate validates the bearer token and stores the caller's user ID in
// the request context. Requests are rate limited per client IP before the
// token is even looked at.
func Authenticate(tokens *auth.TokenIssuer, limiter auth.RateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Error("Rate limiter error", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			token := extractBearer(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, "missing authentication token")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)
				if err == auth.ErrExpiredToken {
					common.RespondError(w, http.StatusUnauthorized, "token has expired")
				} else {
					common.RespondError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			ctx := auth.SetUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MatchPathUser rejects requests whose authenticated user differs from the
// {userID} path segment. Authentication alone is not enough to act on another
// user's resources.
func MatchPathUser() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.UserIDFromContext(r.Context())
			if err != nil {
				common.RespondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if pathUser := chi.URLParam(r, "userID"); pathUser != userID {
				common.RespondError(w, http.StatusForbidden, "user ID does not match authenticated user")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearer pulls the token out of the Authorization header
func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
