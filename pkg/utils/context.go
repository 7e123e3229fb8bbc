package utils

import (
	"context"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	TokenKey     contextKey = "token"
	RequestIDKey contextKey = "request_id"
)

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userIDVal := ctx.Value(UserIDKey)
	if userIDVal == nil {
		return 0, false
	}

	userID, ok := userIDVal.(int64)
	if !ok || userID <= 0 {
		return 0, false
	}

	return userID, true
}

func SetUserContext(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetTokenFromContext returns the raw bearer token the request authenticated with
func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok
}

// SetTokenContext attaches the raw bearer token to the context
func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	idVal := ctx.Value(RequestIDKey)
	if idVal == nil {
		return "", false
	}

	id, ok := idVal.(string)
	return id, ok
}

func SetRequestIDContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
