package krypto

// Secret is a sensitive string passed to third parties, like an API key
// or a password of an upstream service.
type Secret struct {
	Redacted
	value string
}

func NewSecret(raw string) Secret {
	return Secret{value: raw}
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// SecretValue returns the plain secret, for third party packages that need it.
func (s Secret) SecretValue() string {
	return s.value
}
