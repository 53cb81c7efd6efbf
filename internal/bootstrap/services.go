package bootstrap

import (
	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/metrics"
	"github.com/grvsharma1810/pulse/internal/services"
	"github.com/grvsharma1810/pulse/internal/store"

	"go.uber.org/zap"
)

// initializeMetrics returns Prometheus metrics or a noop recorder
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	return metrics.Init(cfg.MetricsEnabled)
}

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	deviceStore core.DeviceStore,
	provider core.IdentityProvider,
	sealer services.Sealer,
	prometheusMetrics metrics.Recorder,
	logger *zap.Logger,
) (*services.DeviceService, *services.SessionService, *services.UserService) {
	deviceService := services.NewDeviceService(
		deviceStore,
		cfg,
		prometheusMetrics,
		logger.Named("device"),
	)
	sessionService := services.NewSessionService(
		provider,
		sealer,
		prometheusMetrics,
		logger.Named("session"),
	)
	userService := services.NewUserService(db, logger.Named("user"))

	return deviceService, sessionService, userService
}
