package devicestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/models"
	"github.com/grvsharma1810/pulse/internal/util"

	"github.com/redis/rueidis"
)

// Compile-time interface check.
var _ core.DeviceStore = (*RueidisStore)(nil)

// minTTL floors key expiry so a record is never written already expired.
const minTTL = time.Second

// createScript inserts the record and its user code index only if neither key exists.
// KEYS: device, user_code. ARGV: record JSON, device code, ttl in milliseconds.
var createScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 1 or redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// authorizeScript swaps a pending record for its authorized form.
// KEYS: device, user_code, token. ARGV: record JSON, device code, ttl in milliseconds.
// Returns 0 when the record is gone and -1 when it is no longer pending.
var authorizeScript = rueidis.NewLuaScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 0
end
local rec = cjson.decode(raw)
if rec['status'] ~= 'pending' then
  return -1
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
redis.call('SET', KEYS[3], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RueidisStore keeps device authorizations in Redis via the rueidis client.
// Suitable for multi-instance deployments. Pending records expire natively;
// authorized records are kept for grace past their token expiry so an
// expired token is still reported as expired rather than unknown.
type RueidisStore struct {
	client    rueidis.Client
	keyPrefix string
	grace     time.Duration
	now       func() time.Time
}

// NewRueidisStore connects to Redis and verifies the connection.
func NewRueidisStore(
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
	grace time.Duration,
) (*RueidisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewRueidisStoreWithClient(client, keyPrefix, grace), nil
}

// NewRueidisStoreWithClient wraps an existing client. The store owns it and closes it on Close.
func NewRueidisStoreWithClient(
	client rueidis.Client,
	keyPrefix string,
	grace time.Duration,
) *RueidisStore {
	return &RueidisStore{
		client:    client,
		keyPrefix: keyPrefix,
		grace:     grace,
		now:       time.Now,
	}
}

func (r *RueidisStore) deviceKey(deviceCode string) string {
	return r.keyPrefix + "device:" + deviceCode
}

func (r *RueidisStore) userCodeKey(userCode string) string {
	return r.keyPrefix + "user_code:" + userCode
}

func (r *RueidisStore) tokenKey(token string) string {
	return r.keyPrefix + "token:" + util.SHA256Hex(token)
}

func (r *RueidisStore) Create(
	ctx context.Context,
	d *models.DeviceAuthorization,
	ttl time.Duration,
) error {
	encoded, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode device authorization: %w", err)
	}

	created, err := createScript.Exec(ctx, r.client,
		[]string{r.deviceKey(d.DeviceCode), r.userCodeKey(d.UserCode)},
		[]string{string(encoded), d.DeviceCode, millis(ttl)},
	).AsInt64()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	if created == 0 {
		return core.ErrConflict
	}
	return nil
}

func (r *RueidisStore) GetByDeviceCode(
	ctx context.Context,
	deviceCode string,
) (*models.DeviceAuthorization, error) {
	raw, err := r.get(ctx, r.deviceKey(deviceCode))
	if err != nil {
		return nil, err
	}

	var d models.DeviceAuthorization
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode device authorization: %w", err)
	}
	return &d, nil
}

func (r *RueidisStore) GetByUserCode(
	ctx context.Context,
	userCode string,
) (*models.DeviceAuthorization, error) {
	deviceCode, err := r.get(ctx, r.userCodeKey(userCode))
	if err != nil {
		return nil, err
	}
	return r.GetByDeviceCode(ctx, deviceCode)
}

func (r *RueidisStore) GetByToken(
	ctx context.Context,
	token string,
) (*models.DeviceAuthorization, error) {
	deviceCode, err := r.get(ctx, r.tokenKey(token))
	if err != nil {
		return nil, err
	}
	d, err := r.GetByDeviceCode(ctx, deviceCode)
	if err != nil {
		return nil, err
	}
	// The index outlived a record that has since been replaced.
	if d.Token != token {
		return nil, core.ErrNotFound
	}
	return d, nil
}

func (r *RueidisStore) MarkAuthorized(
	ctx context.Context,
	userCode, workosID, token string,
	authorizedAt, expiresAt time.Time,
) (*models.DeviceAuthorization, error) {
	d, err := r.GetByUserCode(ctx, userCode)
	if err != nil {
		return nil, err
	}
	if !d.IsPending() {
		return nil, core.ErrNotPending
	}

	d.Status = models.DeviceStatusAuthorized
	d.Token = token
	d.WorkOSID = workosID
	d.AuthorizedAt = authorizedAt
	d.ExpiresAt = expiresAt

	encoded, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode device authorization: %w", err)
	}

	ttl := expiresAt.Sub(r.now()) + r.grace
	result, err := authorizeScript.Exec(ctx, r.client,
		[]string{r.deviceKey(d.DeviceCode), r.userCodeKey(userCode), r.tokenKey(token)},
		[]string{string(encoded), d.DeviceCode, millis(ttl)},
	).AsInt64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}

	switch result {
	case 0:
		return nil, core.ErrNotFound
	case -1:
		return nil, core.ErrNotPending
	default:
		return d, nil
	}
}

func (r *RueidisStore) Delete(ctx context.Context, deviceCode string) error {
	keys := []string{r.deviceKey(deviceCode)}

	d, err := r.GetByDeviceCode(ctx, deviceCode)
	switch {
	case err == nil:
		keys = append(keys, r.userCodeKey(d.UserCode))
		if d.Token != "" {
			keys = append(keys, r.tokenKey(d.Token))
		}
	case errors.Is(err, core.ErrNotFound):
		return nil
	default:
		return err
	}

	if err := r.client.Do(ctx, r.client.B().Del().Key(keys...).Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteStalePending is a no-op: Redis expires pending keys natively.
func (r *RueidisStore) DeleteStalePending(ctx context.Context, createdBefore time.Time) (int, error) {
	return 0, nil
}

// Health pings Redis.
func (r *RueidisStore) Health(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RueidisStore) Close() error {
	r.client.Close()
	return nil
}

func (r *RueidisStore) get(ctx context.Context, key string) (string, error) {
	resp := r.client.Do(ctx, r.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return resp.ToString()
}

func millis(ttl time.Duration) string {
	if ttl < minTTL {
		ttl = minTTL
	}
	return strconv.FormatInt(ttl.Milliseconds(), 10)
}
