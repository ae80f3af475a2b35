package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	ContextUserID contextKey = "userID"
	ContextEmail  contextKey = "email"
	ContextToken  contextKey = "token"
)

func GetUserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextUserID).(string)
	return val, ok
}

func GetEmail(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextEmail).(string)
	return val, ok
}

func GetToken(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextToken).(string)
	return val, ok
}

func setContextValues(r *http.Request, userID, email, token string) *http.Request {
	ctx := context.WithValue(r.Context(), ContextUserID, userID)
	ctx = context.WithValue(ctx, ContextEmail, email)
	ctx = context.WithValue(ctx, ContextToken, token)
	return r.WithContext(ctx)
}
