package identity

import "context"

// Role is the caller's role as asserted by the auth gateway.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
)

// Identity is the authenticated caller. Session issuance lives in the auth
// service; this service only consumes the asserted identity.
type Identity struct {
	UserID int64
	ShopID int64
	Role   Role
}

type ctxKey struct{}

// WithContext attaches the identity to the context.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the identity set by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)

	return id, ok
}
