package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidState is returned when an OAuth state parameter fails verification.
var ErrInvalidState = errors.New("invalid state parameter")

// StateClaims is the payload of a signed OAuth state parameter.
type StateClaims struct {
	UserCode string `json:"uc,omitempty"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// StateSigner signs the state parameter round-tripped through the identity provider.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a compact HS256 token binding userCode to nonce.
func (s *StateSigner) Sign(userCode, nonce string) (string, error) {
	now := s.now()
	claims := StateClaims{
		UserCode: userCode,
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return signed, nil
}

// Verify parses state and checks that it carries nonce.
func (s *StateSigner) Verify(state, nonce string) (*StateClaims, error) {
	if state == "" || nonce == "" {
		return nil, ErrInvalidState
	}

	token, err := jwt.ParseWithClaims(state, &StateClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidState
	}
	if claims.Nonce != nonce {
		return nil, fmt.Errorf("%w: nonce mismatch", ErrInvalidState)
	}
	return claims, nil
}
