package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/models"
	"github.com/grvsharma1810/pulse/internal/store"

	"go.uber.org/zap"
)

const maxColorLength = 64

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidColor = fmt.Errorf("color must be 1-%d characters", maxColorLength)
)

// UserService keeps the local user table in sync with provider profiles.
type UserService struct {
	store  *store.Store
	logger *zap.Logger
}

func NewUserService(s *store.Store, logger *zap.Logger) *UserService {
	return &UserService{store: s, logger: logger}
}

// EnsureUser creates or refreshes the local row for a provider profile.
func (s *UserService) EnsureUser(ctx context.Context, u *core.ProviderUser) (*models.User, error) {
	if u == nil || u.ID == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.store.UpsertUser(ctx, &models.User{
		WorkOSID:  u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}
	return user, nil
}

// GetProfile returns the local user for workosID.
func (s *UserService) GetProfile(ctx context.Context, workosID string) (*models.User, error) {
	user, err := s.store.GetUserByWorkOSID(ctx, workosID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetFavoriteColor(ctx context.Context, workosID string) (string, error) {
	user, err := s.GetProfile(ctx, workosID)
	if err != nil {
		return "", err
	}
	return user.FavoriteColor, nil
}

// SetFavoriteColor validates and stores color, returning the stored value.
func (s *UserService) SetFavoriteColor(ctx context.Context, workosID, color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" || utf8.RuneCountInString(color) > maxColorLength {
		return "", ErrInvalidColor
	}

	err := s.store.UpdateFavoriteColor(ctx, workosID, color)
	if errors.Is(err, store.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	s.logger.Info("favorite color updated", zap.String("workos_id", workosID))
	return color, nil
}
