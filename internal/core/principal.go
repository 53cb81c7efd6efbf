package core

import (
	"context"
	"time"
)

// AuthMethod names how a request was authenticated.
type AuthMethod string

const (
	AuthMethodSessionCookie AuthMethod = "session_cookie"
	AuthMethodSessionBearer AuthMethod = "session_bearer"
	AuthMethodDeviceToken   AuthMethod = "device_token"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	WorkOSID string
	// User is the provider profile carried by a sealed session; nil for device tokens.
	User      *ProviderUser
	Method    AuthMethod
	ExpiresAt time.Time
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
