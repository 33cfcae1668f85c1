package auth_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/willemschots/tuffyestates/internal/auth"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

func Test_Password_ParseHashMatch(t *testing.T) {
	okTests := map[string]string{
		"typical":                        "WeakPassword123",
		"longest password bcrypt hashes": strings.Repeat("a", 72),
		"multibyte":                      "wachtwoord-€€€",
	}

	for name, raw := range okTests {
		t.Run("ok, "+name, func(t *testing.T) {
			pwd := must(auth.ParsePassword(raw))

			hash, err := pwd.Hash()
			if err != nil {
				t.Fatalf("failed to hash password: %v", err)
			}

			if !pwd.Match(hash) {
				t.Errorf("password does not match own hash")
			}

			if hash.Cost() != krypto.BcryptCost {
				t.Errorf("expected cost %d, got %d", krypto.BcryptCost, hash.Cost())
			}
		})
	}

	t.Run("ok, other password does not match", func(t *testing.T) {
		hash := must(must(auth.ParsePassword("reallyStrongPassword1")).Hash())
		other := must(auth.ParsePassword("reallyStrongPassword2"))

		if other.Match(hash) {
			t.Errorf("other password should not match hash")
		}
	})

	failParsing := map[string]string{
		"empty":    "",
		"too long": strings.Repeat("a", 73),
		// 25 runes of 3 bytes each.
		"too many bytes": strings.Repeat("€", 25),
	}

	for name, raw := range failParsing {
		t.Run("fail, "+name, func(t *testing.T) {
			_, err := auth.ParsePassword(raw)
			if err != auth.ErrInvalidPassword {
				t.Errorf("expected auth.ErrInvalidPassword, got %v", err)
			}
		})
	}
}

func Test_Password_Redacted(t *testing.T) {
	raw := "reallyStrongPassword1"
	creds := auth.Credentials{
		Email:    "owner@example.com",
		Password: must(auth.ParsePassword(raw)),
	}

	var logs bytes.Buffer
	slog.New(slog.NewTextHandler(&logs, nil)).Info("login", "credentials", creds, "password", creds.Password)

	var data bytes.Buffer
	enc := json.NewEncoder(&data)
	enc.SetEscapeHTML(false)
	err := enc.Encode(creds)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	outputs := map[string]string{
		"fmt":  fmt.Sprintf("%v %+v %s", creds, creds, creds.Password),
		"json": data.String(),
		"log":  logs.String(),
	}

	for name, out := range outputs {
		t.Run(name, func(t *testing.T) {
			if strings.Contains(out, raw) {
				t.Errorf("output contains the plain password:\n%s", out)
			}

			if !strings.Contains(out, krypto.SecretMarker) {
				t.Errorf("output does not contain %s:\n%s", krypto.SecretMarker, out)
			}
		})
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
