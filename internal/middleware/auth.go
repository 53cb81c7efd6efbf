package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// NewSessionTokenHeader carries a refreshed sealed session back to bearer clients.
	NewSessionTokenHeader = "X-New-Session-Token"

	loginPath = "/login"
)

// Bearer-token failure messages.
const (
	msgTokenRequired = "Authorization token required"
	msgTokenExpired  = "Token expired"
	msgTokenInvalid  = "Invalid or expired token"
	msgSessionFailed = "Authentication failed"
)

// SessionCookie describes the sealed-session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Set writes value as an HttpOnly, SameSite=Lax session cookie on path /.
func (sc SessionCookie) Set(c *gin.Context, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (sc SessionCookie) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the cookie value, or "" when absent.
func (sc SessionCookie) Read(c *gin.Context) string {
	v, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return v
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setPrincipal(c *gin.Context, p *core.Principal) {
	c.Request = c.Request.WithContext(core.WithPrincipal(c.Request.Context(), p))
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// RequireSession accepts a sealed session from the cookie (web) or the
// Authorization header (CLI). Bearer callers may also present a device token.
func RequireSession(
	sessions *services.SessionService,
	devices *services.DeviceService,
	cookie SessionCookie,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			authenticateBearer(c, sessions, devices, token, logger)
			return
		}
		authenticateCookie(c, sessions, cookie, logger)
	}
}

func authenticateCookie(
	c *gin.Context,
	sessions *services.SessionService,
	cookie SessionCookie,
	logger *zap.Logger,
) {
	ctx := c.Request.Context()
	sealed := cookie.Read(c)

	res := sessions.Authenticate(ctx, sealed)
	if res.Authenticated {
		setPrincipal(c, res.Principal(core.AuthMethodSessionCookie))
		c.Next()
		return
	}

	if res.Reason == services.ReasonNoSessionCookie {
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
		return
	}

	refreshed, err := sessions.Refresh(ctx, sealed)
	if err != nil {
		logger.Info("session refresh failed, sending to login",
			zap.String("reason", res.Reason), zap.Error(err))
		cookie.Clear(c)
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
		return
	}

	// Replay the request so downstream handlers see the new cookie.
	cookie.Set(c, refreshed.Sealed)
	c.Redirect(http.StatusFound, c.Request.URL.RequestURI())
	c.Abort()
}

func authenticateBearer(
	c *gin.Context,
	sessions *services.SessionService,
	devices *services.DeviceService,
	token string,
	logger *zap.Logger,
) {
	ctx := c.Request.Context()

	d, err := devices.ResolveBearer(ctx, token)
	switch {
	case err == nil:
		setPrincipal(c, &core.Principal{
			WorkOSID:  d.WorkOSID,
			Method:    core.AuthMethodDeviceToken,
			ExpiresAt: d.ExpiresAt,
		})
		c.Next()
		return
	case errors.Is(err, services.ErrTokenExpired):
		unauthorized(c, msgTokenExpired)
		return
	case !errors.Is(err, services.ErrTokenInvalid):
		logger.Error("device token lookup failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
		return
	}

	// Not a device token; treat it as a sealed session.
	res := sessions.Authenticate(ctx, token)
	if res.Authenticated {
		setPrincipal(c, res.Principal(core.AuthMethodSessionBearer))
		c.Next()
		return
	}
	if res.Reason == services.ReasonInvalidSessionCookie {
		unauthorized(c, msgTokenInvalid)
		return
	}

	refreshed, err := sessions.Refresh(ctx, token)
	if err != nil {
		logger.Info("bearer session refresh failed", zap.Error(err))
		unauthorized(c, msgSessionFailed)
		return
	}

	c.Header(NewSessionTokenHeader, refreshed.Sealed)
	setPrincipal(c, refreshed.Principal(core.AuthMethodSessionBearer))
	c.Next()
}

// RequireDeviceToken accepts only tokens issued by the device-code registry.
func RequireDeviceToken(devices *services.DeviceService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			unauthorized(c, msgTokenRequired)
			return
		}

		d, err := devices.ResolveBearer(c.Request.Context(), token)
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			unauthorized(c, msgTokenExpired)
			return
		case errors.Is(err, services.ErrTokenInvalid):
			unauthorized(c, msgTokenInvalid)
			return
		case err != nil:
			logger.Error("device token lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
			return
		}

		setPrincipal(c, &core.Principal{
			WorkOSID:  d.WorkOSID,
			Method:    core.AuthMethodDeviceToken,
			ExpiresAt: d.ExpiresAt,
		})
		c.Next()
	}
}
