package devicestore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newPending(deviceCode, userCode string, createdAt time.Time) *models.DeviceAuthorization {
	return &models.DeviceAuthorization{
		DeviceCode: deviceCode,
		UserCode:   userCode,
		Status:     models.DeviceStatusPending,
		CreatedAt:  createdAt,
	}
}

// runStoreSuite exercises behaviour every DeviceStore implementation must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) core.DeviceStore) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("create and lookup", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newPending("dev-1", "ABC234", now), 10*time.Minute))

		byDevice, err := s.GetByDeviceCode(ctx, "dev-1")
		require.NoError(t, err)
		assert.Equal(t, "ABC234", byDevice.UserCode)
		assert.True(t, byDevice.IsPending())
		assert.True(t, byDevice.CreatedAt.Equal(now))

		byUser, err := s.GetByUserCode(ctx, "ABC234")
		require.NoError(t, err)
		assert.Equal(t, "dev-1", byUser.DeviceCode)
	})

	t.Run("unknown codes", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByDeviceCode(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.GetByUserCode(ctx, "ZZZZZZ")
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.GetByToken(ctx, "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("duplicate user code conflicts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newPending("dev-1", "DUP234", now), 10*time.Minute))
		err := s.Create(ctx, newPending("dev-2", "DUP234", now), 10*time.Minute)
		assert.ErrorIs(t, err, core.ErrConflict)

		err = s.Create(ctx, newPending("dev-1", "OTHER2", now), 10*time.Minute)
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("mark authorized", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newPending("dev-1", "AUTH23", now), 10*time.Minute))

		expires := now.Add(7 * 24 * time.Hour)
		d, err := s.MarkAuthorized(ctx, "AUTH23", "user_01", "tok-1", now, expires)
		require.NoError(t, err)
		assert.True(t, d.IsAuthorized())
		assert.Equal(t, "tok-1", d.Token)
		assert.Equal(t, "user_01", d.WorkOSID)

		byToken, err := s.GetByToken(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "dev-1", byToken.DeviceCode)
		assert.True(t, byToken.ExpiresAt.Equal(expires))

		_, err = s.MarkAuthorized(ctx, "AUTH23", "user_02", "tok-2", now, expires)
		assert.ErrorIs(t, err, core.ErrNotPending)

		_, err = s.MarkAuthorized(ctx, "NOPE23", "user_02", "tok-2", now, expires)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("concurrent authorize succeeds once", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newPending("dev-1", "RACE23", now), 10*time.Minute))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.MarkAuthorized(ctx, "RACE23", "user", fmt.Sprintf("tok-%d", i),
					now, now.Add(time.Hour))
				if err == nil {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("delete removes indexes", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newPending("dev-1", "DEL234", now), 10*time.Minute))
		_, err := s.MarkAuthorized(ctx, "DEL234", "user", "tok-del", now, now.Add(time.Hour))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "dev-1"))
		require.NoError(t, s.Delete(ctx, "dev-1"), "deleting twice is not an error")

		_, err = s.GetByDeviceCode(ctx, "dev-1")
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.GetByUserCode(ctx, "DEL234")
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.GetByToken(ctx, "tok-del")
		assert.ErrorIs(t, err, core.ErrNotFound)

		// user code is free again
		assert.NoError(t, s.Create(ctx, newPending("dev-2", "DEL234", now), 10*time.Minute))
	})

	t.Run("health", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Health(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) core.DeviceStore {
		s := NewMemoryStore()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMemoryStore_DeleteStalePending(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	require.NoError(t, s.Create(ctx, newPending("old", "OLD234", now.Add(-11*time.Minute)), time.Minute))
	require.NoError(t, s.Create(ctx, newPending("fresh", "NEW234", now.Add(-time.Minute)), time.Minute))
	require.NoError(t, s.Create(ctx, newPending("stale-token", "TOK234", now.Add(-8*24*time.Hour)), time.Minute))
	require.NoError(t, s.Create(ctx, newPending("live-token", "LIV234", now.Add(-time.Hour)), time.Minute))

	_, err := s.MarkAuthorized(ctx, "TOK234", "u1", "expired", now.Add(-8*24*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = s.MarkAuthorized(ctx, "LIV234", "u2", "live", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	removed, err := s.DeleteStalePending(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 3, s.Len())

	_, err = s.GetByDeviceCode(ctx, "old")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.GetByDeviceCode(ctx, "fresh")
	assert.NoError(t, err)
	_, err = s.GetByToken(ctx, "live")
	assert.NoError(t, err)
	// Expired tokens stay until presented so the caller learns they expired.
	_, err = s.GetByToken(ctx, "expired")
	assert.NoError(t, err)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, newPending("dev-1", "CPY234", time.Now()), time.Minute))

	d, err := s.GetByDeviceCode(ctx, "dev-1")
	require.NoError(t, err)
	d.Status = models.DeviceStatusAuthorized

	again, err := s.GetByDeviceCode(ctx, "dev-1")
	require.NoError(t, err)
	assert.True(t, again.IsPending(), "mutating a returned record must not touch the store")
}

func TestRueidisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping Redis test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Skipping Redis test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	addr, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	var n atomic.Int32
	runStoreSuite(t, func(t *testing.T) core.DeviceStore {
		// a fresh prefix per subtest keeps keys isolated on the shared server
		prefix := fmt.Sprintf("test%d:", n.Add(1))
		s, err := NewRueidisStore(ctx, addr, "", 0, prefix, time.Hour)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})

	t.Run("pending records expire natively", func(t *testing.T) {
		s, err := NewRueidisStore(ctx, addr, "", 0, "ttl:", time.Hour)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		require.NoError(t, s.Create(ctx, newPending("dev-ttl", "TTL234", time.Now()), time.Second))
		assert.Eventually(t, func() bool {
			_, err := s.GetByUserCode(ctx, "TTL234")
			return err != nil
		}, 5*time.Second, 100*time.Millisecond)
	})
}
