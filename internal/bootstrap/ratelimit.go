package bootstrap

import (
	"fmt"

	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	deviceCode gin.HandlerFunc
	token      gin.HandlerFunc
	verifyCode gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{
			deviceCode: noOpMiddleware,
			token:      noOpMiddleware,
			verifyCode: noOpMiddleware,
		}, nil
	}
	return createRateLimiters(cfg, redisClient, logger)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) (rateLimitMiddlewares, error) {
	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	logger.Info("rate limiting enabled", zap.String("store", cfg.RateLimitStore))

	createLimiter := func(endpoint string, rpm int, errorCode string) (gin.HandlerFunc, error) {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: rpm,
			StoreType:         storeType,
			RedisClient:       redisClient,
			CleanupInterval:   cfg.RateLimitCleanupEvery,
			Prefix:            cfg.DeviceStorePrefix + "ratelimit:" + endpoint + ":",
			ErrorCode:         errorCode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter for %s: %w", endpoint, err)
		}
		return limiter, nil
	}

	var (
		limiters rateLimitMiddlewares
		err      error
	)
	if limiters.deviceCode, err = createLimiter(
		"device", cfg.DeviceCodeRateLimit, middleware.RateLimitErrorDefault,
	); err != nil {
		return limiters, err
	}
	// Pollers that outrun the limit are told to slow down.
	if limiters.token, err = createLimiter(
		"token", cfg.TokenRateLimit, middleware.RateLimitErrorSlowDown,
	); err != nil {
		return limiters, err
	}
	if limiters.verifyCode, err = createLimiter(
		"verify-code", cfg.VerifyCodeRateLimit, middleware.RateLimitErrorDefault,
	); err != nil {
		return limiters, err
	}
	return limiters, nil
}
