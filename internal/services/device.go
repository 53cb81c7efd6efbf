package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grvsharma1810/pulse/internal/config"
	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/models"
	"github.com/grvsharma1810/pulse/internal/util"

	"go.uber.org/zap"
)

var (
	ErrDeviceCodeNotFound   = errors.New("device code not found")
	ErrDeviceCodeExpired    = errors.New("device code expired")
	ErrUserCodeNotFound     = errors.New("user code not found")
	ErrAuthorizationPending = errors.New("authorization pending")
	ErrTokenInvalid         = errors.New("invalid or expired token")
	ErrTokenExpired         = errors.New("token expired")
)

const (
	deviceCodeLength = 32
	userCodeLength   = 6
	tokenBytes       = 32
	// maxCodeAttempts bounds retries when a generated user code collides.
	maxCodeAttempts = 5
)

// Poll results reported to the metrics recorder.
const (
	pollAuthorized = "authorized"
	pollPending    = "pending"
	pollExpired    = "expired"
	pollNotFound   = "not_found"
)

// DeviceService issues device codes and tracks them until a token is handed to the CLI.
type DeviceService struct {
	store   core.DeviceStore
	config  *config.Config
	metrics core.Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// DeviceServiceOption customises a DeviceService.
type DeviceServiceOption func(*DeviceService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) DeviceServiceOption {
	return func(s *DeviceService) {
		s.now = now
	}
}

func NewDeviceService(
	store core.DeviceStore,
	cfg *config.Config,
	m core.Recorder,
	logger *zap.Logger,
	opts ...DeviceServiceOption,
) *DeviceService {
	s := &DeviceService{
		store:   store,
		config:  cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExpiresIn is how long a pending device code stays valid.
func (s *DeviceService) ExpiresIn() time.Duration {
	return s.config.DeviceCodeExpiration
}

// Interval is the poll interval, in seconds, handed to clients.
func (s *DeviceService) Interval() int {
	return s.config.PollingInterval
}

// Create sweeps stale records and starts a new pending device authorization.
func (s *DeviceService) Create(ctx context.Context) (*models.DeviceAuthorization, error) {
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Warn("device code sweep failed", zap.Error(err))
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		d, err := s.newPending()
		if err != nil {
			s.metrics.RecordDeviceCodeGenerated(false)
			return nil, err
		}

		err = s.store.Create(ctx, d, s.config.DeviceCodeExpiration)
		switch {
		case err == nil:
			s.metrics.RecordDeviceCodeGenerated(true)
			return d, nil
		case errors.Is(err, core.ErrConflict):
			s.logger.Debug("device code collision, retrying", zap.Int("attempt", attempt+1))
			continue
		default:
			s.metrics.RecordDeviceCodeGenerated(false)
			return nil, fmt.Errorf("failed to store device code: %w", err)
		}
	}

	s.metrics.RecordDeviceCodeGenerated(false)
	return nil, fmt.Errorf("failed to allocate a unique user code after %d attempts", maxCodeAttempts)
}

func (s *DeviceService) newPending() (*models.DeviceAuthorization, error) {
	deviceCode, err := util.CryptoRandomFromCharset(deviceCodeLength, util.AlphanumericCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to generate device code: %w", err)
	}
	userCode, err := util.CryptoRandomFromCharset(userCodeLength, util.UserCodeCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user code: %w", err)
	}

	return &models.DeviceAuthorization{
		DeviceCode: deviceCode,
		UserCode:   userCode,
		Status:     models.DeviceStatusPending,
		CreatedAt:  s.now(),
	}, nil
}

// VerifyUserCode reports whether userCode belongs to a live pending authorization.
func (s *DeviceService) VerifyUserCode(ctx context.Context, userCode string) bool {
	d, err := s.store.GetByUserCode(ctx, NormalizeUserCode(userCode))
	if err != nil {
		return false
	}
	return d.IsPending() && !d.PendingExpired(s.now(), s.config.DeviceCodeExpiration)
}

// Authorize binds the pending authorization for userCode to workosID and issues its token.
// A second call for the same code fails with ErrUserCodeNotFound.
func (s *DeviceService) Authorize(
	ctx context.Context,
	userCode, workosID string,
) (*models.DeviceAuthorization, error) {
	userCode = NormalizeUserCode(userCode)
	now := s.now()

	existing, err := s.store.GetByUserCode(ctx, userCode)
	if err != nil {
		return nil, s.mapUserCodeErr(err)
	}
	if existing.PendingExpired(now, s.config.DeviceCodeExpiration) {
		_ = s.store.Delete(ctx, existing.DeviceCode)
		return nil, ErrUserCodeNotFound
	}

	token, err := util.CryptoRandomHex(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	d, err := s.store.MarkAuthorized(
		ctx, userCode, workosID, token,
		now, now.Add(s.config.DeviceTokenExpiration),
	)
	if err != nil {
		return nil, s.mapUserCodeErr(err)
	}

	s.metrics.RecordDeviceCodeAuthorized(now.Sub(d.CreatedAt))
	s.logger.Info("device code authorized",
		zap.String("user_code", userCode),
		zap.String("workos_id", workosID),
		zap.Time("expires_at", d.ExpiresAt),
	)
	return d, nil
}

func (s *DeviceService) mapUserCodeErr(err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrNotPending) {
		return ErrUserCodeNotFound
	}
	return err
}

// Poll returns the authorized record for deviceCode, or ErrAuthorizationPending
// while the user has not finished logging in. Authorized records can be polled
// repeatedly and always return the same token.
func (s *DeviceService) Poll(
	ctx context.Context,
	deviceCode string,
) (*models.DeviceAuthorization, error) {
	d, err := s.store.GetByDeviceCode(ctx, deviceCode)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.metrics.RecordDeviceCodePoll(pollNotFound)
			return nil, ErrDeviceCodeNotFound
		}
		return nil, err
	}

	now := s.now()
	switch {
	case d.PendingExpired(now, s.config.DeviceCodeExpiration), d.TokenExpired(now):
		_ = s.store.Delete(ctx, d.DeviceCode)
		s.metrics.RecordDeviceCodePoll(pollExpired)
		return nil, ErrDeviceCodeExpired
	case d.IsPending():
		s.metrics.RecordDeviceCodePoll(pollPending)
		return nil, ErrAuthorizationPending
	default:
		s.metrics.RecordDeviceCodePoll(pollAuthorized)
		return d, nil
	}
}

// ResolveBearer returns the authorization that issued token. An expired token
// is evicted on access so later calls report ErrTokenInvalid.
func (s *DeviceService) ResolveBearer(
	ctx context.Context,
	token string,
) (*models.DeviceAuthorization, error) {
	if token == "" {
		s.metrics.RecordTokenValidation("invalid")
		return nil, ErrTokenInvalid
	}

	d, err := s.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.metrics.RecordTokenValidation("invalid")
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if d.TokenExpired(s.now()) {
		if err := s.store.Delete(ctx, d.DeviceCode); err != nil {
			s.logger.Warn("failed to evict expired device token", zap.Error(err))
		}
		s.metrics.RecordTokenValidation("expired")
		return nil, ErrTokenExpired
	}

	s.metrics.RecordTokenValidation("valid")
	return d, nil
}

// Sweep deletes pending records older than the code lifetime. Authorized
// records are left to ResolveBearer and Poll, which evict an expired token on
// its next use.
func (s *DeviceService) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteStalePending(ctx, s.now().Add(-s.config.DeviceCodeExpiration))
	if err != nil {
		return 0, err
	}
	s.metrics.RecordDeviceCodesSwept(removed)
	return removed, nil
}

// Health checks the backing store.
func (s *DeviceService) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// NormalizeUserCode upper-cases a typed code and strips separators.
func NormalizeUserCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer("-", "", " ", "").Replace(code)
}
