package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/grvsharma1810/pulse/internal/auth"
	"github.com/grvsharma1810/pulse/internal/config"

	"github.com/appleboy/go-httpclient"
)

// createOAuthHTTPClient creates the HTTP client used for WorkOS API and JWKS calls
func createOAuthHTTPClient(cfg *config.Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second

	client, err := httpclient.NewClient(
		httpclient.WithTimeout(cfg.OAuthTimeout),
		httpclient.WithTransport(transport),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth HTTP client: %w", err)
	}
	return client, nil
}

// initializeAuth builds the WorkOS provider, the session sealer and the
// device-flow state signer. ctx bounds the JWKS refresher.
func initializeAuth(
	ctx context.Context,
	cfg *config.Config,
	httpClient *http.Client,
) (*auth.WorkOSProvider, *auth.Sealer, *auth.StateSigner, error) {
	provider, err := auth.NewWorkOSProvider(ctx, auth.WorkOSConfig{
		APIURL:              cfg.WorkOSAPIURL,
		ClientID:            cfg.WorkOSClientID,
		APIKey:              cfg.WorkOSAPIKey,
		JWKSRefreshInterval: cfg.WorkOSJWKSCacheTTL,
	}, httpClient)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize WorkOS provider: %w", err)
	}

	sealer, err := auth.NewSealer(cfg.WorkOSCookiePassword)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize session sealer: %w", err)
	}

	return provider, sealer, auth.NewStateSigner(cfg.StateSecret, cfg.StateTTL), nil
}
