package handlers

import (
	"net/http"
	"strings"

	"github.com/grvsharma1810/pulse/internal/auth"
	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/middleware"
	"github.com/grvsharma1810/pulse/internal/models"
	"github.com/grvsharma1810/pulse/internal/services"
	"github.com/grvsharma1810/pulse/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const loginMethodWeb = "web"

// SessionHandler serves the browser login, callback, logout and profile endpoints.
type SessionHandler struct {
	sessions *services.SessionService
	users    *services.UserService
	signer   *auth.StateSigner
	cookie   middleware.SessionCookie
	config   *config.Config
	logger   *zap.Logger
}

func NewSessionHandler(
	ss *services.SessionService,
	us *services.UserService,
	signer *auth.StateSigner,
	cookie middleware.SessionCookie,
	cfg *config.Config,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions: ss,
		users:    us,
		signer:   signer,
		cookie:   cookie,
		config:   cfg,
		logger:   logger,
	}
}

// Login handles GET /login by redirecting to the hosted provider login.
func (h *SessionHandler) Login(c *gin.Context) {
	redirect := h.postLoginTarget(c.Query("redirect"))

	state, err := beginFlow(c, flowWeb, h.signer, "", redirect)
	if err != nil {
		h.logger.Error("failed to start login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start login"})
		return
	}

	c.Redirect(http.StatusFound, h.sessions.LoginURL(h.config.WebCallbackURL(), state))
}

// postLoginTarget resolves a caller-supplied redirect against the frontend.
func (h *SessionHandler) postLoginTarget(redirect string) string {
	fallback := h.config.PostLoginURL()
	if redirect == "" {
		return fallback
	}
	if strings.HasPrefix(redirect, "/") && util.IsRedirectSafe(redirect, h.config.FrontendURL) {
		return h.config.FrontendURL + redirect
	}
	return util.SafeRedirect(redirect, fallback, h.config.FrontendURL)
}

// Callback handles GET /callback, the provider redirect target for web logins.
func (h *SessionHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.logger.Info("callback without code", zap.String("error", c.Query("error")))
		c.Redirect(http.StatusFound, "/login")
		return
	}

	_, redirect, err := finishFlow(c, flowWeb, h.signer, c.Query("state"))
	if err != nil {
		h.logger.Warn("callback state rejected", zap.Error(err))
		c.Redirect(http.StatusFound, "/login")
		return
	}

	result, err := h.sessions.CompleteLogin(c.Request.Context(), loginMethodWeb, code)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if _, err := h.users.EnsureUser(c.Request.Context(), result.Session.User); err != nil {
		h.logger.Warn("failed to sync user on login", zap.Error(err))
	}

	h.cookie.Set(c, result.Sealed)
	if redirect == "" {
		redirect = h.config.PostLoginURL()
	}
	c.Redirect(http.StatusFound, redirect)
}

// Logout handles GET /logout.
func (h *SessionHandler) Logout(c *gin.Context) {
	sealed := h.cookie.Read(c)
	h.cookie.Clear(c)

	target, err := h.sessions.LogoutURL(c.Request.Context(), sealed, h.config.FrontendURL)
	if err != nil {
		h.logger.Debug("no provider session to end", zap.Error(err))
		c.Redirect(http.StatusFound, h.config.FrontendURL)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// User handles GET /user for cookie or bearer callers.
func (h *SessionHandler) User(c *gin.Context) {
	p, ok := core.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), p.WorkOSID)
	if err != nil && p.User != nil {
		user, err = h.users.EnsureUser(c.Request.Context(), p.User)
	}
	if err != nil {
		h.logger.Warn("profile lookup failed", zap.String("workos_id", p.WorkOSID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profileJSON(user, p)})
}

func profileJSON(u *models.User, p *core.Principal) gin.H {
	profile := gin.H{
		"id":            u.WorkOSID,
		"email":         u.Email,
		"firstName":     u.FirstName,
		"lastName":      u.LastName,
		"favoriteColor": u.FavoriteColor,
	}
	if p.User != nil {
		profile["emailVerified"] = p.User.EmailVerified
		if p.User.ProfilePictureURL != "" {
			profile["profilePictureUrl"] = p.User.ProfilePictureURL
		}
	}
	return profile
}
