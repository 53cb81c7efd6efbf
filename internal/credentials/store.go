package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Storage backends selectable through PULSE_TOKEN_STORAGE.
const (
	StorageFile     = "file"
	StorageKeychain = "keychain"
)

// Credential is the document persisted between CLI runs.
type Credential struct {
	SessionToken string     `json:"sessionToken"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// Store reads and writes the CLI credential. Unreadable or corrupt
// documents are logged and treated as absent.
type Store struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger, now: time.Now}
}

// DefaultDir is PULSE_CONFIG_DIR, or ~/.pulse.
func DefaultDir() (string, error) {
	if dir := os.Getenv("PULSE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".pulse"), nil
}

// NewFromEnv picks the backend named by PULSE_TOKEN_STORAGE (file by default).
func NewFromEnv(logger *zap.Logger) (*Store, error) {
	switch storage := strings.ToLower(os.Getenv("PULSE_TOKEN_STORAGE")); storage {
	case StorageKeychain:
		return New(NewKeyringBackend(), logger), nil
	case "", StorageFile:
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		return New(NewFileBackend(dir), logger), nil
	default:
		return nil, fmt.Errorf("unknown PULSE_TOKEN_STORAGE %q (must be %q or %q)",
			storage, StorageFile, StorageKeychain)
	}
}

// Read returns the stored credential or nil.
func (s *Store) Read() *Credential {
	data, err := s.backend.Load()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to read credentials", zap.Error(err))
		}
		return nil
	}

	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn("ignoring corrupt credentials", zap.Error(err))
		return nil
	}
	if c.SessionToken == "" {
		return nil
	}
	return &c
}

// Save replaces the stored credential.
func (s *Store) Save(token string, expiresAt *time.Time) error {
	data, err := json.MarshalIndent(Credential{SessionToken: token, ExpiresAt: expiresAt}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return s.backend.Save(data)
}

// UpdateToken swaps the token while keeping the known expiry.
func (s *Store) UpdateToken(token string) error {
	var expiresAt *time.Time
	if c := s.Read(); c != nil {
		expiresAt = c.ExpiresAt
	}
	return s.Save(token, expiresAt)
}

func (s *Store) Clear() error {
	return s.backend.Delete()
}

// Token returns the stored token, or "" when there is none.
func (s *Store) Token() string {
	if c := s.Read(); c != nil {
		return c.SessionToken
	}
	return ""
}

// IsExpiredLocally reports whether the stored expiry has passed.
// A credential without an expiry is never locally expired.
func (s *Store) IsExpiredLocally() bool {
	c := s.Read()
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(*c.ExpiresAt)
}

// IsLoggedIn reports whether a usable credential exists. A locally expired
// credential is cleared.
func (s *Store) IsLoggedIn() bool {
	if s.Read() == nil {
		return false
	}
	if s.IsExpiredLocally() {
		if err := s.Clear(); err != nil {
			s.logger.Warn("failed to clear expired credentials", zap.Error(err))
		}
		return false
	}
	return true
}
