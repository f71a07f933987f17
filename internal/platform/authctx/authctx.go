package authctx

import (
	"context"

	"github.com/parceldesk/shiptrack-backend/internal/types"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *types.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity returns the verified caller, or nil outside an authenticated
// request.
func GetIdentity(ctx context.Context) *types.Identity {
	identity, _ := ctx.Value(identityKey{}).(*types.Identity)
	return identity
}
