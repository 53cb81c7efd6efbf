package bootstrap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/services"
	"github.com/grvsharma1810/pulse/internal/telemetry"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server, logger *zap.Logger) {
	m.AddRunningJob(func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			logger.Error("http server failed", zap.Error(err))
			return err
		case <-ctx.Done():
			return nil
		}
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, srv *http.Server, logger *zap.Logger) {
	m.AddShutdownJob(func() error {
		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
			return err
		}

		logger.Info("server exited")
		return nil
	})
}

// addBackgroundCancelJob stops work bound to the application context
func addBackgroundCancelJob(m *graceful.Manager, cancel context.CancelFunc) {
	m.AddShutdownJob(func() error {
		cancel()
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client, logger *zap.Logger) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		logger.Info("closing rate limit Redis connection")
		if err := redisClient.Close(); err != nil {
			logger.Error("error closing Redis client", zap.Error(err))
			return err
		}
		return nil
	})
}

// addCloserShutdownJob closes a store on shutdown
func addCloserShutdownJob(m *graceful.Manager, name string, c io.Closer, logger *zap.Logger) {
	if c == nil {
		return
	}

	m.AddShutdownJob(func() error {
		logger.Info("closing " + name)
		if err := c.Close(); err != nil {
			logger.Error("error closing "+name, zap.Error(err))
			return err
		}
		return nil
	})
}

// addTracerShutdownJob flushes pending spans on shutdown
func addTracerShutdownJob(m *graceful.Manager, tp *telemetry.Provider, logger *zap.Logger) {
	if !tp.Enabled() {
		return
	}

	m.AddShutdownJob(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("error flushing traces", zap.Error(err))
			return err
		}
		return nil
	})
}

// addDeviceSweepJob periodically drops pending device codes that were never authorized
func addDeviceSweepJob(
	m *graceful.Manager,
	cfg *config.Config,
	deviceService *services.DeviceService,
	logger *zap.Logger,
) {
	if cfg.DeviceSweepInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.DeviceSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sweepDeviceCodes(ctx, deviceService, logger)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func sweepDeviceCodes(ctx context.Context, deviceService *services.DeviceService, logger *zap.Logger) {
	removed, err := deviceService.Sweep(ctx)
	switch {
	case err != nil:
		logger.Warn("device code sweep failed", zap.Error(err))
	case removed > 0:
		logger.Debug("swept expired device codes", zap.Int("removed", removed))
	}
}
