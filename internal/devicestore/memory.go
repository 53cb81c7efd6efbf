package devicestore

import (
	"context"
	"sync"
	"time"

	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/models"
	"github.com/grvsharma1810/pulse/internal/util"
)

// Compile-time interface check.
var _ core.DeviceStore = (*MemoryStore)(nil)

// MemoryStore keeps device authorizations in process memory.
// Suitable for single-instance deployments; a restart drops every code.
type MemoryStore struct {
	mu       sync.RWMutex
	byDevice map[string]*models.DeviceAuthorization
	byUser   map[string]string // user code -> device code
	byToken  map[string]string // sha256(token) -> device code
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byDevice: make(map[string]*models.DeviceAuthorization),
		byUser:   make(map[string]string),
		byToken:  make(map[string]string),
	}
}

// Create stores a pending record. ttl is not enforced here; callers sweep with DeleteStalePending.
func (m *MemoryStore) Create(
	ctx context.Context,
	d *models.DeviceAuthorization,
	ttl time.Duration,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byDevice[d.DeviceCode]; exists {
		return core.ErrConflict
	}
	if _, exists := m.byUser[d.UserCode]; exists {
		return core.ErrConflict
	}

	m.byDevice[d.DeviceCode] = d.Clone()
	m.byUser[d.UserCode] = d.DeviceCode
	if d.Token != "" {
		m.byToken[util.SHA256Hex(d.Token)] = d.DeviceCode
	}
	return nil
}

func (m *MemoryStore) GetByDeviceCode(
	ctx context.Context,
	deviceCode string,
) (*models.DeviceAuthorization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.byDevice[deviceCode]
	if !ok {
		return nil, core.ErrNotFound
	}
	return d.Clone(), nil
}

func (m *MemoryStore) GetByUserCode(
	ctx context.Context,
	userCode string,
) (*models.DeviceAuthorization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deviceCode, ok := m.byUser[userCode]
	if !ok {
		return nil, core.ErrNotFound
	}
	return m.byDevice[deviceCode].Clone(), nil
}

func (m *MemoryStore) GetByToken(
	ctx context.Context,
	token string,
) (*models.DeviceAuthorization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deviceCode, ok := m.byToken[util.SHA256Hex(token)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return m.byDevice[deviceCode].Clone(), nil
}

func (m *MemoryStore) MarkAuthorized(
	ctx context.Context,
	userCode, workosID, token string,
	authorizedAt, expiresAt time.Time,
) (*models.DeviceAuthorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deviceCode, ok := m.byUser[userCode]
	if !ok {
		return nil, core.ErrNotFound
	}
	d := m.byDevice[deviceCode]
	if !d.IsPending() {
		return nil, core.ErrNotPending
	}

	d.Status = models.DeviceStatusAuthorized
	d.Token = token
	d.WorkOSID = workosID
	d.AuthorizedAt = authorizedAt
	d.ExpiresAt = expiresAt
	m.byToken[util.SHA256Hex(token)] = deviceCode

	return d.Clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, deviceCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(deviceCode)
	return nil
}

func (m *MemoryStore) DeleteStalePending(ctx context.Context, createdBefore time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stale []string
	for code, d := range m.byDevice {
		if d.IsPending() && d.CreatedAt.Before(createdBefore) {
			stale = append(stale, code)
		}
	}
	for _, code := range stale {
		m.deleteLocked(code)
	}
	return len(stale), nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byDevice)
}

// Health always succeeds for the memory store.
func (m *MemoryStore) Health(ctx context.Context) error {
	return nil
}

// Close drops all records.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byDevice = make(map[string]*models.DeviceAuthorization)
	m.byUser = make(map[string]string)
	m.byToken = make(map[string]string)
	return nil
}

func (m *MemoryStore) deleteLocked(deviceCode string) {
	d, ok := m.byDevice[deviceCode]
	if !ok {
		return
	}
	delete(m.byDevice, deviceCode)
	if m.byUser[d.UserCode] == deviceCode {
		delete(m.byUser, d.UserCode)
	}
	if d.Token != "" {
		delete(m.byToken, util.SHA256Hex(d.Token))
	}
}
