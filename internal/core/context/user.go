// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext identifies the technician performing the request and the shop
// (tenant) the request is scoped to.
type UserContext struct {
	UserID   string
	Name     string
	TenantID int64
	Roles    []string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetTechnician returns the display name of the acting user, falling back to the user ID.
func GetTechnician(ctx context.Context) string {
	u := GetUser(ctx)
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.UserID
}

// GetTenantID returns tenant ID from context or zero.
func GetTenantID(ctx context.Context) int64 {
	if u := GetUser(ctx); u != nil {
		return u.TenantID
	}
	return 0
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
