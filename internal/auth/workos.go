package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/grvsharma1810/pulse/internal/core"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/oauth2"
)

// Compile-time interface check.
var _ core.IdentityProvider = (*WorkOSProvider)(nil)

var (
	// ErrMissingUser is returned when an authenticate response carries no user profile.
	ErrMissingUser = errors.New("workos: response has no user")
	// ErrInvalidAccessToken is returned when an access token fails verification.
	ErrInvalidAccessToken = errors.New("workos: invalid access token")
)

// WorkOSConfig configures the WorkOS user-management client.
type WorkOSConfig struct {
	APIURL   string // e.g. https://api.workos.com
	ClientID string
	APIKey   string
	// JWKSRefreshInterval is the minimum time between JWKS fetches.
	JWKSRefreshInterval time.Duration
}

// WorkOSProvider talks to the WorkOS AuthKit endpoints.
type WorkOSProvider struct {
	config     *oauth2.Config
	apiURL     string
	jwksURL    string
	jwks       *jwk.Cache
	httpClient *http.Client
}

// NewWorkOSProvider builds a provider. ctx bounds the lifetime of the JWKS refresher.
func NewWorkOSProvider(
	ctx context.Context,
	cfg WorkOSConfig,
	httpClient *http.Client,
) (*WorkOSProvider, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jwksURL := fmt.Sprintf("%s/sso/jwks/%s", cfg.APIURL, url.PathEscape(cfg.ClientID))
	cache := jwk.NewCache(ctx)
	if err := cache.Register(
		jwksURL,
		jwk.WithMinRefreshInterval(cfg.JWKSRefreshInterval),
		jwk.WithHTTPClient(httpClient),
	); err != nil {
		return nil, fmt.Errorf("failed to register JWKS url: %w", err)
	}

	return &WorkOSProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.APIKey,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.APIURL + "/user_management/authorize",
				TokenURL:  cfg.APIURL + "/user_management/authenticate",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL:     cfg.APIURL,
		jwksURL:    jwksURL,
		jwks:       cache,
		httpClient: httpClient,
	}, nil
}

// AuthorizationURL returns the AuthKit hosted login URL.
func (p *WorkOSProvider) AuthorizationURL(redirectURI, state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("provider", "authkit"),
		oauth2.SetAuthURLParam("redirect_uri", redirectURI),
	)
}

// AuthenticateWithCode exchanges an authorization code for a session.
func (p *WorkOSProvider) AuthenticateWithCode(
	ctx context.Context,
	code string,
) (*core.AuthResponse, error) {
	token, err := p.config.Exchange(p.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return authResponseFromToken(token)
}

// AuthenticateWithRefreshToken trades a refresh token for a new session.
func (p *WorkOSProvider) AuthenticateWithRefreshToken(
	ctx context.Context,
	refreshToken string,
) (*core.AuthResponse, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is empty")
	}

	// An empty access token forces the token source to refresh.
	src := p.config.TokenSource(p.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}
	return authResponseFromToken(token)
}

// VerifyAccessToken validates the signature and expiry of a WorkOS access token.
func (p *WorkOSProvider) VerifyAccessToken(
	ctx context.Context,
	accessToken string,
) (*core.AccessTokenClaims, error) {
	set, err := p.jwks.Get(ctx, p.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	tok, err := jwt.ParseString(accessToken,
		jwt.WithKeySet(set, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	claims := &core.AccessTokenClaims{
		Subject:   tok.Subject(),
		ExpiresAt: tok.Expiration(),
	}
	if sid, ok := tok.Get("sid"); ok {
		claims.SessionID, _ = sid.(string)
	}
	return claims, nil
}

// LogoutURL ends the WorkOS session and sends the browser to returnTo.
func (p *WorkOSProvider) LogoutURL(sessionID, returnTo string) string {
	q := url.Values{}
	q.Set("session_id", sessionID)
	if returnTo != "" {
		q.Set("return_to", returnTo)
	}
	return p.apiURL + "/user_management/sessions/logout?" + q.Encode()
}

func (p *WorkOSProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func authResponseFromToken(token *oauth2.Token) (*core.AuthResponse, error) {
	raw := token.Extra("user")
	if raw == nil {
		return nil, ErrMissingUser
	}

	// Extra yields the decoded JSON object; round-trip it into the typed profile.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	var user core.ProviderUser
	if err := json.Unmarshal(encoded, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrMissingUser
	}

	return &core.AuthResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		User:         &user,
	}, nil
}
