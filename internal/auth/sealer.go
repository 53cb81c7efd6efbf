package auth

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/grvsharma1810/pulse/internal/core"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwe"
	"golang.org/x/crypto/pbkdf2"
)

const (
	sealKeyLength     = 32 // A256GCM
	sealKeyIterations = 100_000
	sealKeySalt       = "pulse-session-seal-v1"
	minPasswordLength = 32
)

var (
	// ErrWeakPassword is returned when the sealing password is too short.
	ErrWeakPassword = fmt.Errorf("sealing password must be at least %d characters", minPasswordLength)
	// ErrInvalidSeal is returned when a sealed blob cannot be opened.
	ErrInvalidSeal = errors.New("invalid sealed session")
)

// Session is the state carried inside the session cookie or CLI bearer token.
type Session struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         *core.ProviderUser `json:"user"`
	SealedAt     time.Time          `json:"sealed_at"`
}

// Sealer encrypts sessions into opaque compact JWE strings.
type Sealer struct {
	key []byte
}

// NewSealer derives the encryption key from password.
func NewSealer(password string) (*Sealer, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	key := pbkdf2.Key([]byte(password), []byte(sealKeySalt), sealKeyIterations, sealKeyLength, sha256.New)
	return &Sealer{key: key}, nil
}

// Seal encrypts session. SealedAt is set to now when empty.
func (s *Sealer) Seal(session *Session) (string, error) {
	if session.SealedAt.IsZero() {
		session.SealedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	sealed, err := jwe.Encrypt(payload,
		jwe.WithKey(jwa.DIRECT, s.key),
		jwe.WithContentEncryption(jwa.A256GCM),
	)
	if err != nil {
		return "", fmt.Errorf("seal session: %w", err)
	}
	return string(sealed), nil
}

// Unseal decrypts a blob produced by Seal.
func (s *Sealer) Unseal(sealed string) (*Session, error) {
	if sealed == "" {
		return nil, ErrInvalidSeal
	}

	payload, err := jwe.Decrypt([]byte(sealed), jwe.WithKey(jwa.DIRECT, s.key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeal, err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeal, err)
	}
	return &session, nil
}
