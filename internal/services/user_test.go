package services

import (
	"context"
	"strings"
	"testing"

	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(setupTestStore(t), zap.NewNop())
}

func TestUserService_EnsureUser(t *testing.T) {
	svc := setupUserService(t)
	ctx := context.Background()

	u, err := svc.EnsureUser(ctx, &core.ProviderUser{
		ID:        "user_01",
		Email:     "ada@example.com",
		FirstName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "user_01", u.WorkOSID)

	again, err := svc.EnsureUser(ctx, &core.ProviderUser{ID: "user_01", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "new@example.com", again.Email)

	_, err = svc.EnsureUser(ctx, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.EnsureUser(ctx, &core.ProviderUser{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_FavoriteColor(t *testing.T) {
	svc := setupUserService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, &core.ProviderUser{ID: "user_01"})
	require.NoError(t, err)

	color, err := svc.GetFavoriteColor(ctx, "user_01")
	require.NoError(t, err)
	assert.Empty(t, color)

	stored, err := svc.SetFavoriteColor(ctx, "user_01", "  teal  ")
	require.NoError(t, err)
	assert.Equal(t, "teal", stored)

	color, err = svc.GetFavoriteColor(ctx, "user_01")
	require.NoError(t, err)
	assert.Equal(t, "teal", color)
}

func TestUserService_SetFavoriteColor_Validation(t *testing.T) {
	svc := setupUserService(t)
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, &core.ProviderUser{ID: "user_01"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		color   string
		wantErr error
	}{
		{"empty", "", ErrInvalidColor},
		{"blank", "   ", ErrInvalidColor},
		{"too long", strings.Repeat("a", maxColorLength+1), ErrInvalidColor},
		{"max length", strings.Repeat("a", maxColorLength), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetFavoriteColor(ctx, "user_01", tt.color)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserService_UnknownUser(t *testing.T) {
	svc := setupUserService(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "user_missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetFavoriteColor(ctx, "user_missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.SetFavoriteColor(ctx, "user_missing", "blue")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
