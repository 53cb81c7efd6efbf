package bootstrap

import (
	"github.com/grvsharma1810/pulse/internal/auth"
	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/handlers"
	"github.com/grvsharma1810/pulse/internal/middleware"
	"github.com/grvsharma1810/pulse/internal/services"
	"github.com/grvsharma1810/pulse/internal/store"

	"go.uber.org/zap"
)

// handlerSet holds all HTTP handlers and the services the auth middleware needs
type handlerSet struct {
	session *handlers.SessionHandler
	device  *handlers.DeviceHandler
	color   *handlers.ColorHandler
	health  *handlers.HealthHandler

	cookie         middleware.SessionCookie
	deviceService  *services.DeviceService
	sessionService *services.SessionService
	logger         *zap.Logger
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	deviceService *services.DeviceService,
	sessionService *services.SessionService,
	userService *services.UserService,
	signer *auth.StateSigner,
	db *store.Store,
	deviceStore core.DeviceStore,
	logger *zap.Logger,
) handlerSet {
	cookie := middleware.SessionCookie{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
	}

	return handlerSet{
		session: handlers.NewSessionHandler(
			sessionService,
			userService,
			signer,
			cookie,
			cfg,
			logger.Named("http.session"),
		),
		device: handlers.NewDeviceHandler(
			deviceService,
			sessionService,
			userService,
			signer,
			cookie,
			cfg,
			logger.Named("http.device"),
		),
		color:  handlers.NewColorHandler(userService, logger.Named("http.color")),
		health: handlers.NewHealthHandler(db, deviceStore),

		cookie:         cookie,
		deviceService:  deviceService,
		sessionService: sessionService,
		logger:         logger.Named("http.auth"),
	}
}
