package krypto

import (
	"fmt"
	"io"
	"log/slog"
)

// SecretMarker is a string we can look for in logs to see if the app
// is accidentally exposing secrets.
const SecretMarker = "<!SECRET_REDACTED!>"

// Redacted is embedded in types that hold sensitive values. It makes
// fmt verbs, text and JSON marshalling and slog print SecretMarker
// instead of the value.
type Redacted struct{}

func (Redacted) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, SecretMarker)
}

func (Redacted) MarshalText() ([]byte, error) {
	return []byte(SecretMarker), nil
}

func (Redacted) LogValue() slog.Value {
	return slog.StringValue(SecretMarker)
}
