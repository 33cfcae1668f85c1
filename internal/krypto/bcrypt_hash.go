package krypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for new hashes.
const BcryptCost = 10

var ErrInvalidHash = errors.New("invalid bcrypt hash")

// BcryptHash is a salted bcrypt hash in its modular crypt format,
// for example "$2a$10$...".
type BcryptHash struct {
	encoded []byte
}

// HashBcrypt hashes data with a random salt and BcryptCost.
func HashBcrypt(data []byte) (BcryptHash, error) {
	encoded, err := bcrypt.GenerateFromPassword(data, BcryptCost)
	if err != nil {
		return BcryptHash{}, err
	}

	return BcryptHash{encoded: encoded}, nil
}

// ParseBcryptHash parses a hash in modular crypt format.
func ParseBcryptHash(raw string) (BcryptHash, error) {
	if _, err := bcrypt.Cost([]byte(raw)); err != nil {
		return BcryptHash{}, ErrInvalidHash
	}

	return BcryptHash{encoded: []byte(raw)}, nil
}

// Match reports whether data hashes to h. Comparison is constant time.
func (h BcryptHash) Match(data []byte) bool {
	if len(h.encoded) == 0 {
		return false
	}

	return bcrypt.CompareHashAndPassword(h.encoded, data) == nil
}

// Cost returns the work factor the hash was created with.
func (h BcryptHash) Cost() int {
	cost, err := bcrypt.Cost(h.encoded)
	if err != nil {
		return 0
	}
	return cost
}

// String returns the modular crypt format of the hash.
func (h BcryptHash) String() string {
	return string(h.encoded)
}
