package bootstrap

import (
	"net/http"
	"time"

	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/metrics"
	"github.com/grvsharma1810/pulse/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// flowSessionName is the cookie holding the nonce of an in-progress provider login.
const flowSessionName = "pulse_flow"

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	h handlerSet,
	limiters rateLimitMiddlewares,
	prometheusMetrics metrics.Recorder,
	logger *zap.Logger,
) *gin.Engine {
	setupGinMode(cfg, logger)
	r := gin.New()

	// Setup middleware
	r.Use(
		ginzap.Ginzap(logger, time.RFC3339, true),
		ginzap.RecoveryWithZap(logger, true),
		middleware.RequestID(),
		otelgin.Middleware(cfg.OTelServiceName),
		metrics.HTTPMetricsMiddleware(prometheusMetrics),
	)
	setupCORS(r, cfg)

	// Setup session middleware
	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", h.health.Health)

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg, logger)

	// Setup all routes
	setupAllRoutes(r, h, limiters)

	logServerStartup(cfg, logger)
	return r
}

// setupCORS lets the frontend call the JSON API with credentials
func setupCORS(r *gin.Engine, cfg *config.Config) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.NewSessionTokenHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// setupSessionMiddleware configures the short-lived flow cookie used during provider logins
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.StateTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(flowSessionName, sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, logger *zap.Logger) {
	switch {
	case !cfg.MetricsEnabled:
		logger.Info("prometheus metrics disabled")
	case cfg.MetricsToken != "":
		logger.Info("prometheus metrics enabled at /metrics with bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		logger.Info("prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(r *gin.Engine, h handlerSet, limiters rateLimitMiddlewares) {
	requireSession := middleware.RequireSession(
		h.sessionService,
		h.deviceService,
		h.cookie,
		h.logger,
	)
	requireDeviceToken := middleware.RequireDeviceToken(h.deviceService, h.logger)

	// Browser session routes
	r.GET("/login", h.session.Login)
	r.GET("/callback", h.session.Callback)
	r.GET("/logout", h.session.Logout)

	// Session-authenticated API (cookie or sealed bearer)
	protected := r.Group("")
	protected.Use(requireSession)
	{
		protected.GET("/user", h.session.User)
		protected.GET("/favorite-color", h.color.GetFavoriteColor)
		protected.POST("/favorite-color", h.color.SetFavoriteColor)
	}

	// Device authorization flow
	cli := r.Group("/cli")
	{
		cli.POST("/auth/device", limiters.deviceCode, h.device.DeviceCode)
		cli.GET("/auth/verify", h.device.VerifyPage)
		cli.POST("/auth/verify-code", limiters.verifyCode, h.device.VerifyCode)
		cli.GET("/auth/start-auth", h.device.StartAuth)
		cli.GET("/auth/callback", h.device.Callback)
		cli.POST("/auth/token", limiters.token, h.device.Token)
		cli.GET("/auth/validate", requireDeviceToken, h.device.Validate)

		cli.GET("/favorite-color", requireDeviceToken, h.color.GetFavoriteColor)
		cli.POST("/favorite-color", requireDeviceToken, h.color.SetFavoriteColor)
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config, logger *zap.Logger) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	logger.Info("gin mode", zap.String("mode", ginModeLogMessage[cfg.IsProduction]))
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config, logger *zap.Logger) {
	logger.Info("pulse server starting",
		zap.String("addr", cfg.ServerAddr),
		zap.String("environment", cfg.Environment),
		zap.String("device_store", cfg.DeviceStore),
	)
	logger.Info("device verification page",
		zap.String("url", cfg.VerificationURL()),
		zap.String("tip", "add ?user_code=XXXXXX to pre-fill the code"),
	)
}
