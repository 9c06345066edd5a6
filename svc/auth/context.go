package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/pkg/logger"
)

type (
	userIDContextKey   struct{}
	identityContextKey struct{}
)

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, id)
}

// UserIDFromContext returns the id stored by the bearer guard.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithIdentity stores a provider-verified identity for the current request.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok && id.Email != ""
}

// LoggerExtractor enriches log records with the authenticated user id.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := UserIDFromContext(ctx); ok {
			return logger.UserID(id.String()), true
		}
		return slog.Attr{}, false
	}
}
