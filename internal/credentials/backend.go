package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	configFileName = "config.json"
	keyringService = "pulse-cli"
	keyringUser    = "session"
)

// ErrNotFound is returned by a Backend that holds no credential.
var ErrNotFound = errors.New("credential not found")

// Backend persists the raw credential document.
type Backend interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Delete() error
}

// FileBackend keeps the document in a JSON file readable only by the owner.
type FileBackend struct {
	path string
}

// NewFileBackend stores the credential as config.json inside dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{path: filepath.Join(dir, configFileName)}
}

// Path returns the file location.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save writes through a temp file and rename so readers never see a partial document.
func (f *FileBackend) Save(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to replace credentials: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// KeyringBackend keeps the document in the OS keychain.
type KeyringBackend struct {
	service string
	user    string
}

func NewKeyringBackend() *KeyringBackend {
	return &KeyringBackend{service: keyringService, user: keyringUser}
}

func (k *KeyringBackend) Load() ([]byte, error) {
	secret, err := keyring.Get(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keychain read failed: %w", err)
	}
	return []byte(secret), nil
}

func (k *KeyringBackend) Save(data []byte) error {
	if err := keyring.Set(k.service, k.user, string(data)); err != nil {
		return fmt.Errorf("keychain write failed: %w", err)
	}
	return nil
}

func (k *KeyringBackend) Delete() error {
	err := keyring.Delete(k.service, k.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keychain delete failed: %w", err)
	}
	return nil
}
