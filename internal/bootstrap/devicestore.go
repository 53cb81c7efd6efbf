package bootstrap

import (
	"context"
	"fmt"

	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/devicestore"

	"go.uber.org/zap"
)

// initializeDeviceStore builds the device-code store selected by DEVICE_STORE.
func initializeDeviceStore(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
) (core.DeviceStore, error) {
	switch cfg.DeviceStore {
	case config.DeviceStoreRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
		defer cancel()

		s, err := devicestore.NewRueidisStore(
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			cfg.DeviceStorePrefix,
			cfg.DeviceStoreGrace,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis device store: %w", err)
		}
		logger.Info("device store initialized",
			zap.String("type", "redis"),
			zap.String("address", cfg.RedisAddr),
			zap.String("prefix", cfg.DeviceStorePrefix),
		)
		return s, nil
	default:
		logger.Info("device store initialized",
			zap.String("type", "memory"),
			zap.String("note", "single instance only"),
		)
		return devicestore.NewMemoryStore(), nil
	}
}
