package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Context keys
type contextKey string

const (
	// UserIDKey is the key for the authenticated user ID in the context
	UserIDKey contextKey = "userID"

	loggerKey contextKey = "logger"
)

// NewContextWithUserID adds a user ID to the context
func NewContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext extracts the user ID from the context
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func newContextWithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// loggerFrom returns the request-scoped logger, or the standard logger outside a request
func loggerFrom(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}
