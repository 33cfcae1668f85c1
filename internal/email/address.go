package email

import (
	"errors"
	"net/mail"
	"strings"
)

// maxAddressLength is the longest address a mailbox can receive (RFC 5321).
const maxAddressLength = 254

// ErrInvalidEmail indicates an email address is not valid.
var ErrInvalidEmail = errors.New("invalid email address")

// Address is a bare, lower cased email address without display name or comments.
// Users are looked up by address, so two spellings of the same mailbox
// must compare equal.
type Address string

// ParseAddress checks that raw is shaped like a single bare email address
// and normalizes it. It does not check that the mailbox exists.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > maxAddressLength {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	// mail.ParseAddress also accepts "Alice <alice@example.com>(comment)",
	// only the address part is allowed here.
	if addr.Address != trimmed {
		return "", ErrInvalidEmail
	}

	return Address(strings.ToLower(addr.Address)), nil
}

// Domain returns the part after the @.
func (a Address) Domain() string {
	_, domain, _ := strings.Cut(string(a), "@")
	return domain
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = addr

	return nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a), nil
}
