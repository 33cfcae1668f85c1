package auth

import (
	"errors"

	"github.com/willemschots/tuffyestates/internal/krypto"
)

// maxPasswordBytes is the most bcrypt will hash, longer input is refused
// rather than silently truncated.
const maxPasswordBytes = 72

var ErrInvalidPassword = errors.New("invalid password")

// Password is a plaintext password. It redacts itself when formatted,
// marshalled or logged.
//
// A password can only be hashed, or matched against an existing hash.
// Minimum lengths differ between registering and logging in and are
// enforced by the request schemas.
type Password struct {
	krypto.Redacted
	plain []byte
}

// ParsePassword errors if pwd is empty or longer than bcrypt allows.
func ParsePassword(pwd string) (Password, error) {
	if len(pwd) == 0 || len(pwd) > maxPasswordBytes {
		return Password{}, ErrInvalidPassword
	}

	return Password{plain: []byte(pwd)}, nil
}

// Match checks if the plaintext password matches the given hash.
func (p Password) Match(h krypto.BcryptHash) bool {
	return h.Match(p.plain)
}

// Hash hashes the plaintext password using bcrypt.
func (p Password) Hash() (krypto.BcryptHash, error) {
	return krypto.HashBcrypt(p.plain)
}
