package common

import (
	"context"
	"strings"
)

// DefaultUserID scopes records when no user context is present (single-tenant mode).
const DefaultUserID = "default"

// UserContext holds per-request user settings injected via X-Tally-* headers.
// When absent (nil), the server operates in single-tenant mode using config values.
type UserContext struct {
	UserID       string
	CurrencyCode string
	Locale       string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUserID returns the UserID from context, or "default" when no user context is present.
// Used by services and storage operations that need a user scope.
func ResolveUserID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil && strings.TrimSpace(uc.UserID) != "" {
		return strings.TrimSpace(uc.UserID)
	}
	return DefaultUserID
}

// ResolveDisplay returns the user-context display settings, falling back to the configured ones.
func ResolveDisplay(ctx context.Context, fallback DisplayConfig) DisplayConfig {
	out := fallback
	if uc := UserContextFromContext(ctx); uc != nil {
		if uc.CurrencyCode != "" {
			out.CurrencyCode = strings.ToUpper(uc.CurrencyCode)
		}
		if uc.Locale != "" {
			out.Locale = uc.Locale
		}
	}
	return out
}
