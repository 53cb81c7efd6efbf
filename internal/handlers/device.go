package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/grvsharma1810/pulse/internal/auth"
	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/middleware"
	"github.com/grvsharma1810/pulse/internal/services"
	"github.com/grvsharma1810/pulse/internal/templates"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const loginMethodDevice = "device"

// DeviceHandler serves the /cli/auth endpoints of the device-code flow.
type DeviceHandler struct {
	devices  *services.DeviceService
	sessions *services.SessionService
	users    *services.UserService
	signer   *auth.StateSigner
	cookie   middleware.SessionCookie
	config   *config.Config
	logger   *zap.Logger
}

func NewDeviceHandler(
	ds *services.DeviceService,
	ss *services.SessionService,
	us *services.UserService,
	signer *auth.StateSigner,
	cookie middleware.SessionCookie,
	cfg *config.Config,
	logger *zap.Logger,
) *DeviceHandler {
	return &DeviceHandler{
		devices:  ds,
		sessions: ss,
		users:    us,
		signer:   signer,
		cookie:   cookie,
		config:   cfg,
		logger:   logger,
	}
}

// DeviceCode handles POST /cli/auth/device.
func (h *DeviceHandler) DeviceCode(c *gin.Context) {
	d, err := h.devices.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to create device code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to create device authorization",
		})
		return
	}

	verificationURL := h.config.VerificationURL()
	c.JSON(http.StatusOK, gin.H{
		"deviceCode":              d.DeviceCode,
		"userCode":                d.UserCode,
		"verificationUrl":         verificationURL,
		"verificationUrlComplete": verificationURL + "?user_code=" + url.QueryEscape(d.UserCode),
		"expiresIn":               int(h.devices.ExpiresIn().Seconds()),
		"interval":                h.devices.Interval(),
	})
}

// VerifyPage handles GET /cli/auth/verify.
func (h *DeviceHandler) VerifyPage(c *gin.Context) {
	templates.RenderTempl(c, http.StatusOK, templates.VerifyPage(templates.VerifyPageProps{
		UserCode: c.Query("user_code"),
	}))
}

type verifyCodeRequest struct {
	UserCode string `json:"userCode" form:"user_code"`
}

// VerifyCode handles POST /cli/auth/verify-code.
func (h *DeviceHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBind(&req); err != nil || req.UserCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "userCode is required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": h.devices.VerifyUserCode(c.Request.Context(), req.UserCode)})
}

// StartAuth handles GET /cli/auth/start-auth by sending the browser to the
// provider with a signed state that carries the user code.
func (h *DeviceHandler) StartAuth(c *gin.Context) {
	userCode := services.NormalizeUserCode(c.Query("user_code"))
	if userCode == "" || !h.devices.VerifyUserCode(c.Request.Context(), userCode) {
		templates.RenderTempl(c, http.StatusBadRequest, templates.VerifyPage(templates.VerifyPageProps{
			UserCode: c.Query("user_code"),
			Error:    "That code is invalid or has expired. Check your terminal and try again.",
		}))
		return
	}

	state, err := beginFlow(c, flowDevice, h.signer, userCode, "")
	if err != nil {
		h.logger.Error("failed to start device login", zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Could not start sign in",
		}))
		return
	}

	c.Redirect(http.StatusFound, h.sessions.LoginURL(h.config.DeviceCallbackURL(), state))
}

// Callback handles GET /cli/auth/callback and authorizes the pending device.
func (h *DeviceHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	claims, _, err := finishFlow(c, flowDevice, h.signer, c.Query("state"))
	if err != nil || claims.UserCode == "" {
		h.logger.Warn("device callback state rejected", zap.Error(err))
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "Invalid sign-in request",
			Message: "This sign-in link is invalid or has expired. Start again from your terminal.",
		}))
		return
	}

	code := c.Query("code")
	if code == "" {
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "Sign in was not completed",
			Message: c.Query("error_description"),
		}))
		return
	}

	result, err := h.sessions.CompleteLogin(ctx, loginMethodDevice, code)
	if err != nil {
		templates.RenderTempl(c, http.StatusBadGateway, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Authentication failed",
		}))
		return
	}

	principal := result.Principal(core.AuthMethodSessionCookie)
	if _, err := h.users.EnsureUser(ctx, result.Session.User); err != nil {
		h.logger.Warn("failed to sync user on device login", zap.Error(err))
	}

	if _, err := h.devices.Authorize(ctx, claims.UserCode, principal.WorkOSID); err != nil {
		status := http.StatusInternalServerError
		msg := "Could not authorize device"
		if errors.Is(err, services.ErrUserCodeNotFound) {
			status = http.StatusBadRequest
			msg = "This code has expired or was already used"
		}
		h.logger.Warn("device authorization failed", zap.String("user_code", claims.UserCode), zap.Error(err))
		templates.RenderTempl(c, status, templates.ErrorPage(templates.ErrorPageProps{Error: msg}))
		return
	}

	// The browser is signed in as well.
	h.cookie.Set(c, result.Sealed)

	email := ""
	if principal.User != nil {
		email = principal.User.Email
	}
	templates.RenderTempl(c, http.StatusOK, templates.SuccessPage(templates.SuccessPageProps{
		Email:    email,
		UserCode: claims.UserCode,
	}))
}

type tokenRequest struct {
	DeviceCode    string `json:"deviceCode" form:"device_code"`
	DeviceCodeAlt string `json:"device_code" form:"-"`
}

// Token handles POST /cli/auth/token, the CLI poll endpoint.
func (h *DeviceHandler) Token(c *gin.Context) {
	var req tokenRequest
	_ = c.ShouldBind(&req)
	deviceCode := req.DeviceCode
	if deviceCode == "" {
		deviceCode = req.DeviceCodeAlt
	}
	if deviceCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "deviceCode is required",
		})
		return
	}

	d, err := h.devices.Poll(c.Request.Context(), deviceCode)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"token":     d.Token,
			"expiresAt": d.ExpiresAt,
		})
	case errors.Is(err, services.ErrAuthorizationPending):
		c.JSON(http.StatusPreconditionRequired, gin.H{
			"error":             "authorization_pending",
			"error_description": "The user has not completed sign in yet",
		})
	case errors.Is(err, services.ErrDeviceCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "invalid_grant",
			"error_description": "Unknown device code",
		})
	case errors.Is(err, services.ErrDeviceCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "expired_token",
			"error_description": "The device code has expired",
		})
	default:
		h.logger.Error("device poll failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to check authorization status",
		})
	}
}

// Validate handles GET /cli/auth/validate for device-token callers.
func (h *DeviceHandler) Validate(c *gin.Context) {
	p, ok := core.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	resp := gin.H{
		"valid":     true,
		"workosId":  p.WorkOSID,
		"expiresAt": p.ExpiresAt,
	}
	if u, err := h.users.GetProfile(c.Request.Context(), p.WorkOSID); err == nil {
		resp["email"] = u.Email
		resp["firstName"] = u.FirstName
		resp["lastName"] = u.LastName
	}
	c.JSON(http.StatusOK, resp)
}
