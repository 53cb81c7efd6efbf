package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
)

const (
	// AlphanumericCharset is used for opaque device codes.
	AlphanumericCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// UserCodeCharset drops characters that are easy to confuse when typed (0/O, 1/I/L).
	UserCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// CryptoRandomHex returns length random bytes, hex-encoded.
func CryptoRandomHex(length int) (string, error) {
	buf, err := CryptoRandomBytes(int64(length))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CryptoRandomFromCharset returns a string of length characters drawn
// uniformly from charset.
func CryptoRandomFromCharset(length int, charset string) (string, error) {
	if charset == "" {
		return "", errors.New("empty charset")
	}
	out := make([]byte, length)
	limit := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

// SHA256Hex returns the SHA-256 hash of s as a lowercase hex string.
// Intended for use with high-entropy, unguessable values (e.g., randomly
// generated tokens); for such inputs, a salt is not required for security.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
