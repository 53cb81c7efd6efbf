package models

import (
	"time"
)

// DeviceStatus is the authorization state of a device code.
type DeviceStatus string

const (
	DeviceStatusPending    DeviceStatus = "pending"
	DeviceStatusAuthorized DeviceStatus = "authorized"
)

// DeviceAuthorization tracks one CLI login attempt from creation to token issue.
type DeviceAuthorization struct {
	DeviceCode   string       `json:"deviceCode"`
	UserCode     string       `json:"userCode"`
	Status       DeviceStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	Token        string       `json:"token,omitempty"`    // set once authorized
	WorkOSID     string       `json:"workosId,omitempty"` // set once authorized
	AuthorizedAt time.Time    `json:"authorizedAt,omitzero"`
	ExpiresAt    time.Time    `json:"expiresAt,omitzero"` // token expiry
}

func (d *DeviceAuthorization) IsPending() bool {
	return d.Status == DeviceStatusPending
}

func (d *DeviceAuthorization) IsAuthorized() bool {
	return d.Status == DeviceStatusAuthorized
}

// PendingExpired reports whether a pending record has outlived ttl.
func (d *DeviceAuthorization) PendingExpired(now time.Time, ttl time.Duration) bool {
	return d.IsPending() && !now.Before(d.CreatedAt.Add(ttl))
}

// TokenExpired reports whether the issued token is no longer valid at now.
func (d *DeviceAuthorization) TokenExpired(now time.Time) bool {
	return d.IsAuthorized() && !now.Before(d.ExpiresAt)
}

// Clone returns a copy safe to hand out of a store.
func (d *DeviceAuthorization) Clone() *DeviceAuthorization {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
