package bootstrap

import (
	"errors"
	"fmt"

	"github.com/grvsharma1810/pulse/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateRateLimitConfig(cfg); err != nil {
		return fmt.Errorf("invalid rate limit configuration: %w", err)
	}
	return nil
}

// validateRateLimitConfig checks the per-endpoint limits when rate limiting is on
func validateRateLimitConfig(cfg *config.Config) error {
	if !cfg.EnableRateLimit {
		return nil
	}

	var errs []error
	for name, rpm := range map[string]int{
		"DEVICE_CODE_RATE_LIMIT": cfg.DeviceCodeRateLimit,
		"TOKEN_RATE_LIMIT":       cfg.TokenRateLimit,
		"VERIFY_CODE_RATE_LIMIT": cfg.VerifyCodeRateLimit,
	} {
		if rpm <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive when ENABLE_RATE_LIMIT=true", name))
		}
	}
	return errors.Join(errs...)
}
