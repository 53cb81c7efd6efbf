package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Device store backends
const (
	DeviceStoreMemory = "memory"
	DeviceStoreRedis  = "redis"
)

// Rate limit store backends
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

const minCookiePasswordLength = 32

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	Environment  string
	IsProduction bool

	// Frontend that receives the browser after a successful web login
	FrontendURL           string
	FrontendPostLoginPath string
	CORSAllowedOrigins    []string

	// WorkOS settings
	WorkOSAPIKey         string
	WorkOSClientID       string
	WorkOSAPIURL         string
	WorkOSCookiePassword string
	WorkOSJWKSCacheTTL   time.Duration
	OAuthTimeout         time.Duration

	// Session cookie settings
	SessionCookieName   string
	SessionCookieSecure bool

	// Device-flow state settings
	SessionSecret string // signs the short-lived flow cookie
	StateSecret   string // signs the provider state parameter
	StateTTL      time.Duration

	// Device code settings
	DeviceCodeExpiration  time.Duration
	DeviceTokenExpiration time.Duration
	PollingInterval       int // seconds
	DeviceSweepInterval   time.Duration

	// Device store
	DeviceStore        string // "memory" or "redis"
	DeviceStorePrefix  string
	DeviceStoreGrace   time.Duration // extra TTL kept in Redis after a token expires
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisConnTimeout   time.Duration

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Rate limiting
	EnableRateLimit       bool
	RateLimitStore        string // "memory" or "redis"
	DeviceCodeRateLimit   int    // requests per minute for /cli/auth/device
	TokenRateLimit        int    // requests per minute for /cli/auth/token
	VerifyCodeRateLimit   int    // requests per minute for /cli/auth/verify-code
	RateLimitCleanupEvery time.Duration

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Tracing
	OTelEndpoint    string
	OTelInsecure    bool
	OTelServiceName string
}

// Load reads configuration from the environment, honouring an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")
	isProduction := env == "production"
	baseURL := getEnv("BASE_URL", "http://localhost:3000")
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:5173")

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":3000"),
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Environment:  env,
		IsProduction: isProduction,

		FrontendURL:           strings.TrimRight(frontendURL, "/"),
		FrontendPostLoginPath: getEnv("FRONTEND_POST_LOGIN_PATH", "/dashboard"),
		CORSAllowedOrigins:    getEnvSlice("CORS_ALLOWED_ORIGINS", []string{frontendURL}),

		WorkOSAPIKey:         getEnv("WORKOS_API_KEY", ""),
		WorkOSClientID:       getEnv("WORKOS_CLIENT_ID", ""),
		WorkOSAPIURL:         strings.TrimRight(getEnv("WORKOS_API_URL", "https://api.workos.com"), "/"),
		WorkOSCookiePassword: getEnv("WORKOS_COOKIE_PASSWORD", ""),
		WorkOSJWKSCacheTTL:   getEnvDuration("WORKOS_JWKS_CACHE_TTL", time.Hour),
		OAuthTimeout:         getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),

		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "wos-session"),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", true),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		StateSecret:   getEnv("STATE_SECRET", ""),
		StateTTL:      getEnvDuration("STATE_TTL", 10*time.Minute),

		DeviceCodeExpiration:  getEnvDuration("DEVICE_CODE_EXPIRATION", 10*time.Minute),
		DeviceTokenExpiration: getEnvDuration("DEVICE_TOKEN_EXPIRATION", 7*24*time.Hour),
		PollingInterval:       getEnvInt("DEVICE_POLL_INTERVAL", 5),
		DeviceSweepInterval:   getEnvDuration("DEVICE_SWEEP_INTERVAL", time.Minute),

		DeviceStore:       getEnv("DEVICE_STORE", DeviceStoreMemory),
		DeviceStorePrefix: getEnv("DEVICE_STORE_PREFIX", "pulse:"),
		DeviceStoreGrace:  getEnvDuration("DEVICE_STORE_GRACE", 24*time.Hour),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisConnTimeout:  getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "pulse.db"),
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		EnableRateLimit:       getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:        getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		DeviceCodeRateLimit:   getEnvInt("DEVICE_CODE_RATE_LIMIT", 10),
		TokenRateLimit:        getEnvInt("TOKEN_RATE_LIMIT", 30),
		VerifyCodeRateLimit:   getEnvInt("VERIFY_CODE_RATE_LIMIT", 10),
		RateLimitCleanupEvery: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_ENDPOINT", ""),
		OTelInsecure:    getEnvBool("OTEL_INSECURE", true),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "pulse-server"),
	}
}

// Validate checks the configuration for values that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.WorkOSClientID == "" {
		errs = append(errs, errors.New("WORKOS_CLIENT_ID is required"))
	}
	if c.WorkOSAPIKey == "" {
		errs = append(errs, errors.New("WORKOS_API_KEY is required"))
	}
	if len(c.WorkOSCookiePassword) < minCookiePasswordLength {
		errs = append(errs, fmt.Errorf(
			"WORKOS_COOKIE_PASSWORD must be at least %d characters", minCookiePasswordLength,
		))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.StateSecret == "" {
		errs = append(errs, errors.New("STATE_SECRET is required"))
	}

	switch c.DeviceStore {
	case DeviceStoreMemory, DeviceStoreRedis:
	default:
		errs = append(errs, fmt.Errorf(
			"invalid DEVICE_STORE value: %q (must be %q or %q)",
			c.DeviceStore, DeviceStoreMemory, DeviceStoreRedis,
		))
	}

	switch c.RateLimitStore {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		errs = append(errs, fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		))
	}

	if c.DeviceCodeExpiration <= 0 {
		errs = append(errs, errors.New("DEVICE_CODE_EXPIRATION must be positive"))
	}
	if c.DeviceTokenExpiration <= 0 {
		errs = append(errs, errors.New("DEVICE_TOKEN_EXPIRATION must be positive"))
	}
	if c.PollingInterval <= 0 {
		errs = append(errs, errors.New("DEVICE_POLL_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

// PostLoginURL is where the browser lands after a successful web login.
func (c *Config) PostLoginURL() string {
	return c.FrontendURL + c.FrontendPostLoginPath
}

// WebCallbackURL is the provider redirect target for web logins.
func (c *Config) WebCallbackURL() string {
	return c.BaseURL + "/callback"
}

// DeviceCallbackURL is the provider redirect target for the device flow.
func (c *Config) DeviceCallbackURL() string {
	return c.BaseURL + "/cli/auth/callback"
}

// VerificationURL is the page where users type their user code.
func (c *Config) VerificationURL() string {
	return c.BaseURL + "/cli/auth/verify"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := splitAndTrim(value, ","); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
