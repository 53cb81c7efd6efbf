package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grvsharma1810/pulse/internal/auth"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Reasons reported by Authenticate when a session is not usable as-is.
const (
	ReasonNoSessionCookie      = "no_session_cookie_provided"
	ReasonInvalidSessionCookie = "invalid_session_cookie"
	ReasonInvalidJWT           = "invalid_jwt"
)

// refreshTimeout bounds a shared refresh that no longer follows any request context.
const refreshTimeout = 30 * time.Second

var (
	// ErrUpstream wraps any failure talking to the identity provider.
	ErrUpstream = errors.New("identity provider request failed")
	// ErrNoSession is returned when an operation needs a session and none was given.
	ErrNoSession = errors.New("no session")
)

// Sealer seals and unseals session state.
type Sealer interface {
	Seal(*auth.Session) (string, error)
	Unseal(string) (*auth.Session, error)
}

// AuthenticateResult describes whether a sealed session can be used without a refresh.
type AuthenticateResult struct {
	Authenticated bool
	Reason        string
	Session       *auth.Session
	Claims        *core.AccessTokenClaims
}

// RefreshResult is a freshly sealed session.
type RefreshResult struct {
	Sealed  string
	Session *auth.Session
	Claims  *core.AccessTokenClaims
}

// Principal returns the caller identity carried by the session.
func (r *AuthenticateResult) Principal(method core.AuthMethod) *core.Principal {
	return sessionPrincipal(r.Session, r.Claims, method)
}

// Principal returns the caller identity carried by the refreshed session.
func (r *RefreshResult) Principal(method core.AuthMethod) *core.Principal {
	return sessionPrincipal(r.Session, r.Claims, method)
}

func sessionPrincipal(s *auth.Session, c *core.AccessTokenClaims, method core.AuthMethod) *core.Principal {
	p := &core.Principal{Method: method, User: s.User}
	if c != nil {
		p.WorkOSID = c.Subject
		p.ExpiresAt = c.ExpiresAt
	}
	if p.WorkOSID == "" && s.User != nil {
		p.WorkOSID = s.User.ID
	}
	return p
}

// SessionService validates, refreshes and terminates provider-backed sessions.
type SessionService struct {
	provider core.IdentityProvider
	sealer   Sealer
	metrics  core.Recorder
	logger   *zap.Logger
	refresh  singleflight.Group
}

func NewSessionService(
	provider core.IdentityProvider,
	sealer Sealer,
	m core.Recorder,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		provider: provider,
		sealer:   sealer,
		metrics:  m,
		logger:   logger,
	}
}

// LoginURL returns the provider login URL for the given callback.
func (s *SessionService) LoginURL(redirectURI, state string) string {
	return s.provider.AuthorizationURL(redirectURI, state)
}

// Authenticate unseals sealed and verifies its access token. It never calls
// the provider beyond the cached JWKS.
func (s *SessionService) Authenticate(ctx context.Context, sealed string) *AuthenticateResult {
	if sealed == "" {
		s.metrics.RecordSessionAuthentication(ReasonNoSessionCookie)
		return &AuthenticateResult{Reason: ReasonNoSessionCookie}
	}

	session, err := s.sealer.Unseal(sealed)
	if err != nil {
		s.metrics.RecordSessionAuthentication(ReasonInvalidSessionCookie)
		return &AuthenticateResult{Reason: ReasonInvalidSessionCookie}
	}

	claims, err := s.provider.VerifyAccessToken(ctx, session.AccessToken)
	if err != nil {
		s.logger.Debug("access token rejected", zap.Error(err))
		s.metrics.RecordSessionAuthentication(ReasonInvalidJWT)
		return &AuthenticateResult{Reason: ReasonInvalidJWT, Session: session}
	}

	s.metrics.RecordSessionAuthentication("authenticated")
	return &AuthenticateResult{Authenticated: true, Session: session, Claims: claims}
}

// Refresh exchanges the refresh token inside sealed for a new session. Concurrent
// refreshes of the same sealed value share a single upstream call.
func (s *SessionService) Refresh(ctx context.Context, sealed string) (*RefreshResult, error) {
	if sealed == "" {
		return nil, ErrNoSession
	}

	v, err, shared := s.refresh.Do(util.SHA256Hex(sealed), func() (any, error) {
		// The call is shared, so one caller going away must not fail the others.
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.doRefresh(refreshCtx, sealed)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("session refresh shared with concurrent request")
	}
	return v.(*RefreshResult), nil
}

func (s *SessionService) doRefresh(ctx context.Context, sealed string) (*RefreshResult, error) {
	session, err := s.sealer.Unseal(sealed)
	if err != nil {
		s.metrics.RecordSessionRefresh(false)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	start := time.Now()
	resp, err := s.provider.AuthenticateWithRefreshToken(ctx, session.RefreshToken)
	s.metrics.RecordExternalAPICall("authenticate_with_refresh_token", time.Since(start))
	if err != nil {
		s.metrics.RecordSessionRefresh(false)
		s.logger.Warn("session refresh failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result, err := s.sealResponse(ctx, resp)
	if err != nil {
		s.metrics.RecordSessionRefresh(false)
		return nil, err
	}
	s.metrics.RecordSessionRefresh(true)
	return result, nil
}

// CompleteLogin exchanges an authorization code and seals the resulting session.
func (s *SessionService) CompleteLogin(ctx context.Context, method, code string) (*RefreshResult, error) {
	start := time.Now()
	resp, err := s.provider.AuthenticateWithCode(ctx, code)
	s.metrics.RecordExternalAPICall("authenticate_with_code", time.Since(start))
	if err != nil {
		s.metrics.RecordLogin(method, false)
		s.logger.Warn("code exchange failed", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result, err := s.sealResponse(ctx, resp)
	if err != nil {
		s.metrics.RecordLogin(method, false)
		return nil, err
	}
	s.metrics.RecordLogin(method, true)
	return result, nil
}

func (s *SessionService) sealResponse(ctx context.Context, resp *core.AuthResponse) (*RefreshResult, error) {
	session := &auth.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	sealed, err := s.sealer.Seal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to seal session: %w", err)
	}

	// A provider-issued token that fails verification is still usable after the
	// next refresh, so only the subject lookup degrades here.
	claims, err := s.provider.VerifyAccessToken(ctx, resp.AccessToken)
	if err != nil {
		s.logger.Warn("fresh access token failed verification", zap.Error(err))
		claims = nil
	}

	return &RefreshResult{Sealed: sealed, Session: session, Claims: claims}, nil
}

// LogoutURL returns the provider URL that ends the session inside sealed.
func (s *SessionService) LogoutURL(ctx context.Context, sealed, returnTo string) (string, error) {
	if sealed == "" {
		return "", ErrNoSession
	}
	session, err := s.sealer.Unseal(sealed)
	if err != nil {
		return "", err
	}

	claims, err := s.provider.VerifyAccessToken(ctx, session.AccessToken)
	if err != nil || claims.SessionID == "" {
		return "", fmt.Errorf("session id unavailable: %w", ErrNoSession)
	}

	s.metrics.RecordLogout()
	return s.provider.LogoutURL(claims.SessionID, returnTo), nil
}
