package core

import (
	"context"
	"time"
)

// ProviderUser is the user profile returned by the identity provider.
type ProviderUser struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	EmailVerified     bool   `json:"email_verified"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// AuthResponse is the outcome of a code or refresh-token exchange.
type AuthResponse struct {
	AccessToken  string
	RefreshToken string
	User         *ProviderUser
}

// AccessTokenClaims are the verified claims of a provider access token.
type AccessTokenClaims struct {
	Subject   string
	SessionID string
	ExpiresAt time.Time
}

// IdentityProvider is the upstream identity service that owns user sessions.
// WorkOSProvider is the production implementation.
type IdentityProvider interface {
	// AuthorizationURL returns the hosted login URL for the given redirect target.
	AuthorizationURL(redirectURI, state string) string
	AuthenticateWithCode(ctx context.Context, code string) (*AuthResponse, error)
	AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	// VerifyAccessToken checks signature and expiry of an access token.
	VerifyAccessToken(ctx context.Context, accessToken string) (*AccessTokenClaims, error)
	LogoutURL(sessionID, returnTo string) string
}
