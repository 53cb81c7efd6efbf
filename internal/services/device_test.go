package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/devicestore"
	"github.com/grvsharma1810/pulse/internal/metrics"
	"github.com/grvsharma1810/pulse/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDeviceConfig() *config.Config {
	return &config.Config{
		DeviceCodeExpiration:  10 * time.Minute,
		DeviceTokenExpiration: 7 * 24 * time.Hour,
		PollingInterval:       5,
	}
}

func setupDeviceService(t *testing.T) (*DeviceService, *devicestore.MemoryStore, *fakeClock) {
	t.Helper()
	store := devicestore.NewMemoryStore()
	clock := newFakeClock()
	svc := NewDeviceService(
		store,
		testDeviceConfig(),
		metrics.NewNoopMetrics(),
		zap.NewNop(),
		WithClock(clock.Now),
	)
	return svc, store, clock
}

func TestDeviceService_Create(t *testing.T) {
	svc, _, clock := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)

	assert.Len(t, d.DeviceCode, 32)
	for _, c := range d.DeviceCode {
		assert.True(t, strings.ContainsRune(util.AlphanumericCharset, c))
	}
	assert.Len(t, d.UserCode, 6)
	for _, c := range d.UserCode {
		assert.True(t, strings.ContainsRune(util.UserCodeCharset, c))
	}
	assert.True(t, d.IsPending())
	assert.Equal(t, clock.Now(), d.CreatedAt)
	assert.Empty(t, d.Token)
	assert.Equal(t, 10*time.Minute, svc.ExpiresIn())
	assert.Equal(t, 5, svc.Interval())
}

func TestDeviceService_UserCodesUnique(t *testing.T) {
	svc, _, _ := setupDeviceService(t)
	ctx := context.Background()

	seenUser := map[string]bool{}
	seenDevice := map[string]bool{}
	for i := 0; i < 200; i++ {
		d, err := svc.Create(ctx)
		require.NoError(t, err)
		assert.False(t, seenUser[d.UserCode], "duplicate user code %s", d.UserCode)
		assert.False(t, seenDevice[d.DeviceCode], "duplicate device code %s", d.DeviceCode)
		seenUser[d.UserCode] = true
		seenDevice[d.DeviceCode] = true
	}
}

func TestDeviceService_CreateSweepsStaleRecords(t *testing.T) {
	svc, store, clock := setupDeviceService(t)
	ctx := context.Background()

	old, err := svc.Create(ctx)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	_, err = svc.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	_, err = svc.Poll(ctx, old.DeviceCode)
	assert.ErrorIs(t, err, ErrDeviceCodeNotFound)
}

func TestDeviceService_VerifyUserCode(t *testing.T) {
	svc, _, clock := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)

	assert.True(t, svc.VerifyUserCode(ctx, d.UserCode))
	assert.True(t, svc.VerifyUserCode(ctx, strings.ToLower(d.UserCode)), "case-insensitive")
	assert.True(t, svc.VerifyUserCode(ctx, d.UserCode[:3]+"-"+d.UserCode[3:]), "dash tolerated")
	assert.False(t, svc.VerifyUserCode(ctx, "WRONG1"))
	assert.False(t, svc.VerifyUserCode(ctx, ""))

	clock.Advance(10 * time.Minute)
	assert.False(t, svc.VerifyUserCode(ctx, d.UserCode), "expired pending code")
}

func TestDeviceService_VerifyUserCodeAfterAuthorize(t *testing.T) {
	svc, _, _ := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Authorize(ctx, d.UserCode, "user_01")
	require.NoError(t, err)

	assert.False(t, svc.VerifyUserCode(ctx, d.UserCode))
}

func TestDeviceService_PollLifecycle(t *testing.T) {
	svc, _, clock := setupDeviceService(t)
	ctx := context.Background()

	_, err := svc.Poll(ctx, "unknown-device-code")
	assert.ErrorIs(t, err, ErrDeviceCodeNotFound)

	d, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Poll(ctx, d.DeviceCode)
	assert.ErrorIs(t, err, ErrAuthorizationPending)

	clock.Advance(time.Minute)
	authorized, err := svc.Authorize(ctx, d.UserCode, "user_01")
	require.NoError(t, err)

	first, err := svc.Poll(ctx, d.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, authorized.Token, first.Token)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), first.ExpiresAt)

	second, err := svc.Poll(ctx, d.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token, "repeated polls return the same token")
}

func TestDeviceService_PollExpiredPending(t *testing.T) {
	svc, store, clock := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = svc.Poll(ctx, d.DeviceCode)
	assert.ErrorIs(t, err, ErrDeviceCodeExpired)
	assert.Equal(t, 0, store.Len())

	_, err = svc.Poll(ctx, d.DeviceCode)
	assert.ErrorIs(t, err, ErrDeviceCodeNotFound)
}

func TestDeviceService_Authorize(t *testing.T) {
	svc, _, _ := setupDeviceService(t)
	ctx := context.Background()

	t.Run("unknown user code", func(t *testing.T) {
		_, err := svc.Authorize(ctx, "NOPE23", "user_01")
		assert.ErrorIs(t, err, ErrUserCodeNotFound)
	})

	t.Run("issues distinct tokens", func(t *testing.T) {
		tokens := map[string]bool{}
		for i := 0; i < 20; i++ {
			d, err := svc.Create(ctx)
			require.NoError(t, err)
			a, err := svc.Authorize(ctx, strings.ToLower(d.UserCode), "user_01")
			require.NoError(t, err)
			assert.Len(t, a.Token, 64)
			assert.Equal(t, "user_01", a.WorkOSID)
			assert.False(t, tokens[a.Token])
			tokens[a.Token] = true
		}
	})

	t.Run("second authorize fails", func(t *testing.T) {
		d, err := svc.Create(ctx)
		require.NoError(t, err)
		first, err := svc.Authorize(ctx, d.UserCode, "user_01")
		require.NoError(t, err)

		_, err = svc.Authorize(ctx, d.UserCode, "user_02")
		assert.ErrorIs(t, err, ErrUserCodeNotFound)

		polled, err := svc.Poll(ctx, d.DeviceCode)
		require.NoError(t, err)
		assert.Equal(t, first.Token, polled.Token)
		assert.Equal(t, "user_01", polled.WorkOSID)
	})
}

func TestDeviceService_AuthorizeExpiredPending(t *testing.T) {
	svc, store, clock := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)
	clock.Advance(11 * time.Minute)

	_, err = svc.Authorize(ctx, d.UserCode, "user_01")
	assert.ErrorIs(t, err, ErrUserCodeNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestDeviceService_ConcurrentAuthorize(t *testing.T) {
	svc, _, _ := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Authorize(ctx, d.UserCode, "user_01"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one callback may authorize a user code")
}

func TestDeviceService_ResolveBearer(t *testing.T) {
	svc, store, clock := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)
	a, err := svc.Authorize(ctx, d.UserCode, "user_01")
	require.NoError(t, err)

	_, err = svc.ResolveBearer(ctx, "")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.ResolveBearer(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	resolved, err := svc.ResolveBearer(ctx, a.Token)
	require.NoError(t, err)
	assert.Equal(t, "user_01", resolved.WorkOSID)

	clock.Advance(7*24*time.Hour - time.Second)
	_, err = svc.ResolveBearer(ctx, a.Token)
	require.NoError(t, err, "still valid one second before expiry")

	clock.Advance(time.Second)
	_, err = svc.ResolveBearer(ctx, a.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, 0, store.Len(), "expired record is evicted on access")

	for i := 0; i < 3; i++ {
		_, err = svc.ResolveBearer(ctx, a.Token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "rejection is stable after eviction")
	}
}

func TestDeviceService_PollAfterTokenExpiry(t *testing.T) {
	svc, _, clock := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Authorize(ctx, d.UserCode, "user_01")
	require.NoError(t, err)

	clock.Advance(8 * 24 * time.Hour)
	_, err = svc.Poll(ctx, d.DeviceCode)
	assert.ErrorIs(t, err, ErrDeviceCodeExpired)
}

func TestDeviceService_Sweep(t *testing.T) {
	svc, store, clock := setupDeviceService(t)
	ctx := context.Background()

	authorized, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Authorize(ctx, authorized.UserCode, "user_01")
	require.NoError(t, err)

	_, err = svc.Create(ctx)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	removed, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "only the stale pending record is removed")
	assert.Equal(t, 1, store.Len())

	clock.Advance(7 * 24 * time.Hour)
	removed, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "authorized records are never swept")
	assert.Equal(t, 1, store.Len())
}

func TestDeviceService_ExpiredTokenSurvivesOtherLogins(t *testing.T) {
	svc, _, clock := setupDeviceService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx)
	require.NoError(t, err)
	a, err := svc.Authorize(ctx, d.UserCode, "user_01")
	require.NoError(t, err)

	clock.Advance(7*24*time.Hour + time.Minute)

	// Another CLI starting a login sweeps the store.
	_, err = svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Sweep(ctx)
	require.NoError(t, err)

	_, err = svc.ResolveBearer(ctx, a.Token)
	assert.ErrorIs(t, err, ErrTokenExpired, "first use after expiry reports expiry")

	_, err = svc.ResolveBearer(ctx, a.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNormalizeUserCode(t *testing.T) {
	tests := map[string]string{
		"abc234":    "ABC234",
		"ABC-234":   "ABC234",
		" abc 234 ": "ABC234",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeUserCode(in), "input %q", in)
	}
}
