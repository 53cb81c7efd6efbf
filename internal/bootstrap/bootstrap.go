package bootstrap

import (
	"context"
	"net/http"

	"github.com/grvsharma1810/pulse/internal/auth"
	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/metrics"
	"github.com/grvsharma1810/pulse/internal/services"
	"github.com/grvsharma1810/pulse/internal/store"
	"github.com/grvsharma1810/pulse/internal/telemetry"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *zap.Logger

	// Core infrastructure
	DB                   *store.Store
	DeviceStore          core.DeviceStore
	MetricsRecorder      metrics.Recorder
	Telemetry            *telemetry.Provider
	RateLimitRedisClient *redis.Client
	OAuthHTTPClient      *http.Client

	// Auth primitives
	IdentityProvider core.IdentityProvider
	Sealer           *auth.Sealer
	StateSigner      *auth.StateSigner

	// Services
	DeviceService  *services.DeviceService
	SessionService *services.SessionService
	UserService    *services.UserService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server

	// cancel stops background work tied to the application context (JWKS refresh).
	cancel context.CancelFunc
}

// Run initializes and starts the application
func Run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		Config: cfg,
		Logger: logger,
		cancel: cancel,
	}

	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg); err != nil {
		cancel()
		return err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		app.closeInfrastructure()
		return err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(ctx); err != nil {
		app.closeInfrastructure()
		return err
	}

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		app.closeInfrastructure()
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, device store, metrics, tracing and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Device store
	app.DeviceStore, err = initializeDeviceStore(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	// Metrics and tracing
	app.MetricsRecorder = initializeMetrics(app.Config)
	app.Telemetry, err = telemetry.New(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	// Outbound client for WorkOS
	app.OAuthHTTPClient, err = createOAuthHTTPClient(app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up the auth primitives and services
func (app *Application) initializeBusinessLayer(ctx context.Context) error {
	var err error

	app.IdentityProvider, app.Sealer, app.StateSigner, err = initializeAuth(
		ctx,
		app.Config,
		app.OAuthHTTPClient,
	)
	if err != nil {
		return err
	}

	app.DeviceService, app.SessionService, app.UserService = initializeServices(
		app.Config,
		app.DB,
		app.DeviceStore,
		app.IdentityProvider,
		app.Sealer,
		app.MetricsRecorder,
		app.Logger,
	)
	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.DeviceService,
		app.SessionService,
		app.UserService,
		app.StateSigner,
		app.DB,
		app.DeviceStore,
		app.Logger,
	)

	limiters, err := setupRateLimiting(app.Config, app.RateLimitRedisClient, app.Logger)
	if err != nil {
		return err
	}

	app.Router = setupRouter(
		app.Config,
		app.HandlerSet,
		limiters,
		app.MetricsRecorder,
		app.Logger,
	)
	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server, app.Logger)
	addDeviceSweepJob(m, app.Config, app.DeviceService, app.Logger)
	addServerShutdownJob(m, app.Server, app.Logger)
	addBackgroundCancelJob(m, app.cancel)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient, app.Logger)
	addCloserShutdownJob(m, "device store", app.DeviceStore, app.Logger)
	addCloserShutdownJob(m, "database", app.DB, app.Logger)
	addTracerShutdownJob(m, app.Telemetry, app.Logger)

	<-m.Done()
}

// closeInfrastructure releases whatever was opened before a startup failure.
func (app *Application) closeInfrastructure() {
	app.cancel()
	if app.RateLimitRedisClient != nil {
		_ = app.RateLimitRedisClient.Close()
	}
	if app.DeviceStore != nil {
		_ = app.DeviceStore.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
	if app.Telemetry != nil {
		_ = app.Telemetry.Shutdown(context.Background())
	}
}
