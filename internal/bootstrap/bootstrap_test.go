package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/devicestore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validTestConfig() *config.Config {
	return &config.Config{
		ServerAddr:            ":3000",
		BaseURL:               "http://pulse.test",
		Environment:           "test",
		FrontendURL:           "http://frontend.test",
		FrontendPostLoginPath: "/dashboard",
		CORSAllowedOrigins:    []string{"http://frontend.test"},
		WorkOSAPIKey:          "sk_test",
		WorkOSClientID:        "client_123",
		WorkOSAPIURL:          "http://workos.test",
		WorkOSCookiePassword:  "0123456789abcdef0123456789abcdef",
		WorkOSJWKSCacheTTL:    time.Hour,
		OAuthTimeout:          5 * time.Second,
		SessionCookieName:     "wos-session",
		SessionSecret:         "session-secret",
		StateSecret:           "state-secret",
		StateTTL:              10 * time.Minute,
		DeviceCodeExpiration:  10 * time.Minute,
		DeviceTokenExpiration: time.Hour,
		PollingInterval:       5,
		DeviceStore:           config.DeviceStoreMemory,
		DeviceStorePrefix:     "pulse-test:",
		RateLimitStore:        config.RateLimitStoreMemory,
		DeviceCodeRateLimit:   10,
		TokenRateLimit:        30,
		VerifyCodeRateLimit:   10,
		RateLimitCleanupEvery: time.Minute,
		DatabaseDriver:        "sqlite",
		DatabaseDSN:           ":memory:",
		DBInitTimeout:         5 * time.Second,
		OTelServiceName:       "pulse-test",
	}
}

func TestValidateAllConfiguration(t *testing.T) {
	assert.NoError(t, validateAllConfiguration(validTestConfig()))

	cfg := validTestConfig()
	cfg.StateSecret = ""
	err := validateAllConfiguration(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATE_SECRET is required")
}

func TestValidateRateLimitConfig(t *testing.T) {
	cfg := validTestConfig()
	cfg.EnableRateLimit = true
	assert.NoError(t, validateRateLimitConfig(cfg))

	cfg.TokenRateLimit = 0
	err := validateRateLimitConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_RATE_LIMIT must be positive")

	// Limits are ignored when rate limiting is off.
	cfg.EnableRateLimit = false
	assert.NoError(t, validateRateLimitConfig(cfg))
}

func TestInitializeMetrics(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := &config.Config{MetricsEnabled: enabled}
		m := initializeMetrics(cfg)
		require.NotNil(t, m)
	}
}

func TestInitializeDatabase(t *testing.T) {
	db, err := initializeDatabase(context.Background(), validTestConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.NoError(t, db.Health(context.Background()))

	cfg := validTestConfig()
	cfg.DatabaseDriver = "oracle"
	_, err = initializeDatabase(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitializeDeviceStoreMemory(t *testing.T) {
	s, err := initializeDeviceStore(context.Background(), validTestConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &devicestore.MemoryStore{}, s)
	assert.NoError(t, s.Close())
}

func TestInitializeDeviceStoreRedisUnreachable(t *testing.T) {
	cfg := validTestConfig()
	cfg.DeviceStore = config.DeviceStoreRedis
	cfg.RedisAddr = "127.0.0.1:1"
	cfg.RedisConnTimeout = 500 * time.Millisecond

	_, err := initializeDeviceStore(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestInitializeRateLimitRedisClientSkipped(t *testing.T) {
	cfg := validTestConfig()

	cfg.EnableRateLimit = false
	client, err := initializeRateLimitRedisClient(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)

	cfg.EnableRateLimit = true
	cfg.RateLimitStore = config.RateLimitStoreMemory
	client, err = initializeRateLimitRedisClient(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestCreateOAuthHTTPClient(t *testing.T) {
	client, err := createOAuthHTTPClient(validTestConfig())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)
}

func TestInitializeAuth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, sealer, signer, err := initializeAuth(ctx, validTestConfig(), http.DefaultClient)
	require.NoError(t, err)
	require.NotNil(t, provider)
	require.NotNil(t, sealer)
	require.NotNil(t, signer)

	cfg := validTestConfig()
	cfg.WorkOSCookiePassword = "short"
	_, _, _, err = initializeAuth(ctx, cfg, http.DefaultClient)
	assert.Error(t, err)
}

func TestSetupRateLimitingDisabled(t *testing.T) {
	limiters, err := setupRateLimiting(&config.Config{EnableRateLimit: false}, nil, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, limiters.deviceCode)
	require.NotNil(t, limiters.token)
	require.NotNil(t, limiters.verifyCode)

	// Verify noop middlewares don't panic
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.NotPanics(t, func() { limiters.token(c) })
}

func TestSetupRateLimitingMemory(t *testing.T) {
	cfg := validTestConfig()
	cfg.EnableRateLimit = true
	limiters, err := setupRateLimiting(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, limiters.deviceCode)
	require.NotNil(t, limiters.token)
	require.NotNil(t, limiters.verifyCode)
}

func TestSetupRateLimitingRedisWithoutClient(t *testing.T) {
	cfg := validTestConfig()
	cfg.EnableRateLimit = true
	cfg.RateLimitStore = config.RateLimitStoreRedis
	_, err := setupRateLimiting(cfg, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestCreateHTTPServer(t *testing.T) {
	srv := createHTTPServer(
		&config.Config{ServerAddr: ":8080"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)
	require.NotNil(t, srv)
	assert.Equal(t, ":8080", srv.Addr)
}

func TestGinModeMap(t *testing.T) {
	assert.Equal(t, gin.ReleaseMode, ginModeMap[true])
	assert.Equal(t, gin.DebugMode, ginModeMap[false])
}
