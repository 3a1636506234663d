package auth

import (
	"context"
	"errors"
)

type contextKey string

const userIDKey contextKey = "userID"

// ErrNoUserInContext is returned when the request context carries no user
var ErrNoUserInContext = errors.New("no authenticated user in context")

// SetUserID stores the authenticated user identifier in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user identifier
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUserInContext
	}
	return userID, nil
}
