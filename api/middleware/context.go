package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendorhub/vendorhub-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxVendorID contextKey = "vendor_id"
)

// Principal is the authenticated caller seeded by the Auth middleware.
type Principal struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	VendorID *uuid.UUID
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v
	}
	return ""
}

func VendorIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxVendorID).(uuid.UUID); ok {
		return &v
	}
	return nil
}

func PrincipalFromContext(ctx context.Context) Principal {
	return Principal{
		UserID:   UserIDFromContext(ctx),
		Role:     RoleFromContext(ctx),
		VendorID: VendorIDFromContext(ctx),
	}
}

// WithPrincipal seeds the context with an authenticated caller. Handler tests
// use it to bypass the Auth middleware.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, principal.UserID)
	ctx = context.WithValue(ctx, ctxRole, principal.Role)
	if principal.VendorID != nil {
		ctx = context.WithValue(ctx, ctxVendorID, *principal.VendorID)
	}
	return ctx
}
