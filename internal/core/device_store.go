package core

import (
	"context"
	"errors"
	"time"

	"github.com/grvsharma1810/pulse/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("device store: not found")
	// ErrConflict is returned when a device code or user code is already taken.
	ErrConflict = errors.New("device store: conflict")
	// ErrNotPending is returned when authorizing a record that is no longer pending.
	ErrNotPending = errors.New("device store: not pending")
	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("device store: unavailable")
)

// DeviceStore persists device authorizations. Implementations must make
// MarkAuthorized an atomic compare-and-set on the pending status.
type DeviceStore interface {
	// Create inserts a pending record. ttl bounds how long the record lives if never authorized.
	Create(ctx context.Context, d *models.DeviceAuthorization, ttl time.Duration) error
	GetByDeviceCode(ctx context.Context, deviceCode string) (*models.DeviceAuthorization, error)
	GetByUserCode(ctx context.Context, userCode string) (*models.DeviceAuthorization, error)
	GetByToken(ctx context.Context, token string) (*models.DeviceAuthorization, error)
	// MarkAuthorized moves the pending record for userCode to authorized.
	// Returns ErrNotFound if no record exists and ErrNotPending if it was already authorized.
	MarkAuthorized(
		ctx context.Context,
		userCode, workosID, token string,
		authorizedAt, expiresAt time.Time,
	) (*models.DeviceAuthorization, error)
	Delete(ctx context.Context, deviceCode string) error
	// DeleteStalePending removes pending records created before createdBefore.
	// Authorized records are never swept: an expired token is evicted when it
	// is next presented, so that first use still reports it as expired.
	DeleteStalePending(ctx context.Context, createdBefore time.Time) (int, error)
	Health(ctx context.Context) error
	Close() error
}
