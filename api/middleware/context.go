package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "role"
	ctxAccessID contextKey = "access_id"
)

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, id)
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil when the
// request was not authenticated.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(ctxRole).(string); ok {
		return role
	}
	return ""
}

func WithAccessID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxAccessID, id)
}

// AccessIDFromContext returns the session access id (the token jti).
func AccessIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxAccessID).(string); ok {
		return id
	}
	return ""
}
