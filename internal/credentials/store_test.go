package credentials

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".pulse")
	return New(NewFileBackend(dir), zap.NewNop()), dir
}

func TestStore_FileRoundTrip(t *testing.T) {
	s, dir := newFileStore(t)

	assert.Nil(t, s.Read())
	assert.False(t, s.IsLoggedIn())
	assert.Empty(t, s.Token())

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, s.Save("tok-1", &expires))

	c := s.Read()
	require.NotNil(t, c)
	assert.Equal(t, "tok-1", c.SessionToken)
	assert.True(t, expires.Equal(*c.ExpiresAt))
	assert.True(t, s.IsLoggedIn())
	assert.Equal(t, "tok-1", s.Token())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

		info, err = os.Stat(filepath.Join(dir, configFileName))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, s.Clear())
	assert.Nil(t, s.Read())
	// Clearing twice is fine.
	assert.NoError(t, s.Clear())
}

func TestStore_FileFormat(t *testing.T) {
	s, dir := newFileStore(t)
	require.NoError(t, s.Save("tok-1", nil))

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionToken":"tok-1"}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestStore_CorruptFileIsIgnored(t *testing.T) {
	s, dir := newFileStore(t)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("{not json"), 0o600))

	assert.Nil(t, s.Read())
	assert.False(t, s.IsLoggedIn())
}

func TestStore_LocalExpiry(t *testing.T) {
	s, _ := newFileStore(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	expires := now.Add(time.Minute)
	require.NoError(t, s.Save("tok-1", &expires))
	assert.False(t, s.IsExpiredLocally())
	assert.True(t, s.IsLoggedIn())

	now = expires
	assert.True(t, s.IsExpiredLocally())
	assert.False(t, s.IsLoggedIn())
	assert.Nil(t, s.Read(), "expired credential is cleared")
}

func TestStore_NoExpiryNeverExpiresLocally(t *testing.T) {
	s, _ := newFileStore(t)
	require.NoError(t, s.Save("tok-1", nil))
	assert.False(t, s.IsExpiredLocally())
	assert.True(t, s.IsLoggedIn())
}

func TestStore_UpdateTokenKeepsExpiry(t *testing.T) {
	s, _ := newFileStore(t)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, s.Save("tok-1", &expires))

	require.NoError(t, s.UpdateToken("tok-2"))
	c := s.Read()
	require.NotNil(t, c)
	assert.Equal(t, "tok-2", c.SessionToken)
	assert.True(t, expires.Equal(*c.ExpiresAt))
}

func TestStore_Keyring(t *testing.T) {
	keyring.MockInit()
	s := New(NewKeyringBackend(), zap.NewNop())

	assert.Nil(t, s.Read())
	require.NoError(t, s.Save("tok-k", nil))
	assert.Equal(t, "tok-k", s.Token())

	require.NoError(t, s.Clear())
	assert.Nil(t, s.Read())
	assert.NoError(t, s.Clear())
}

func TestNewFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PULSE_CONFIG_DIR", dir)

	t.Setenv("PULSE_TOKEN_STORAGE", "")
	s, err := NewFromEnv(zap.NewNop())
	require.NoError(t, err)
	fb, ok := s.backend.(*FileBackend)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, configFileName), fb.Path())

	t.Setenv("PULSE_TOKEN_STORAGE", "keychain")
	s, err = NewFromEnv(zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &KeyringBackend{}, s.backend)

	t.Setenv("PULSE_TOKEN_STORAGE", "vault")
	_, err = NewFromEnv(zap.NewNop())
	assert.Error(t, err)
}
