package krypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

const keyLen = 32

var ErrInvalidKey = errors.New("invalid key")

// Key is a 32 byte symmetric key, used to sign bearer tokens.
type Key struct {
	Redacted
	value []byte
}

// ParseKey expects a hex encoded key of 32 bytes (64 characters).
func ParseKey(raw string) (Key, error) {
	if len(raw) != keyLen*2 {
		return Key{}, ErrInvalidKey
	}

	k, err := hex.DecodeString(raw)
	if err != nil {
		return Key{}, ErrInvalidKey
	}

	return Key{value: k}, nil
}

// GenerateKey returns a random key. Hex returns its configurable form.
func GenerateKey() (Key, error) {
	k := make([]byte, keyLen)
	_, err := rand.Read(k)
	if err != nil {
		return Key{}, err
	}
	return Key{value: k}, nil
}

// IsZero reports whether the key was never set.
func (k Key) IsZero() bool {
	return len(k.value) == 0
}

// Hex encodes the key the way ParseKey expects it.
func (k Key) Hex() string {
	return hex.EncodeToString(k.value)
}

// SecretValue returns the key as a byte slice, for third party
// packages that need the raw key.
func (k Key) SecretValue() []byte {
	return k.value
}
