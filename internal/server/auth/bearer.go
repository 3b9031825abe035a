package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/common"
)

// Identity is the resolved caller of a request. The zero value is the
// anonymous marker.
type Identity struct {
	UserID   string
	Username string
}

func (i Identity) Anonymous() bool { return i.UserID == "" }

const bearerPrefix = "bearer "

// ResolveBearer derives the acting identity from a raw Authorization header
// value. An absent header yields the anonymous identity, not an error. A
// present header must carry a case-insensitive "Bearer " prefix followed by
// a verifiable token; anything else fails with common.ErrInvalidToken.
func ResolveBearer(header string, secretKey []byte) (Identity, error) {
	if header == "" {
		return Identity{}, nil
	}

	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return Identity{}, common.ErrInvalidToken
	}

	claims, err := ParseToken(strings.TrimSpace(header[len(bearerPrefix):]), secretKey)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

type ctxKey struct{}

// ContextWithIdentity attaches the resolved identity to the request context.
// Both protocol adapters store it the same way, so resolvers and handlers
// share one lookup.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity attached by the guard middleware,
// or the anonymous identity when none was attached.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
