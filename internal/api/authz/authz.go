package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type uidContextKey struct{}

// ContextWithUID stores the verified account UID of the caller.
func ContextWithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidContextKey{}, uid)
}

// UIDFromContext retrieves the verified account UID, or "" when the
// request is unauthenticated.
func UIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	uid, ok := ctx.Value(uidContextKey{}).(string)
	if !ok {
		return ""
	}
	return uid
}

// RequireUID returns the caller's UID or ErrUnauthenticated.
func RequireUID(ctx context.Context) (string, error) {
	uid := UIDFromContext(ctx)
	if uid == "" {
		return "", ErrUnauthenticated
	}
	return uid, nil
}
