package krypto_test

import (
	"errors"
	"testing"

	"github.com/willemschots/tuffyestates/internal/krypto"
)

func Test_BcryptHash(t *testing.T) {
	t.Run("ok, hash matches hashed data", func(t *testing.T) {
		h, err := krypto.HashBcrypt([]byte("WeakPassword123"))
		if err != nil {
			t.Fatalf("failed to hash: %v", err)
		}

		if !h.Match([]byte("WeakPassword123")) {
			t.Errorf("expected hash to match hashed data")
		}

		if h.Match([]byte("WeakPassword124")) {
			t.Errorf("expected hash not to match other data")
		}

		if h.Cost() != krypto.BcryptCost {
			t.Errorf("got cost %d, want %d", h.Cost(), krypto.BcryptCost)
		}
	})

	t.Run("ok, hash never equals plaintext", func(t *testing.T) {
		h := must(krypto.HashBcrypt([]byte("WeakPassword123")))
		if h.String() == "WeakPassword123" {
			t.Fatalf("hash equals plaintext")
		}
	})

	t.Run("ok, parse round trip", func(t *testing.T) {
		h := must(krypto.HashBcrypt([]byte("WeakPassword123")))

		parsed, err := krypto.ParseBcryptHash(h.String())
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if !parsed.Match([]byte("WeakPassword123")) {
			t.Errorf("expected parsed hash to match")
		}
	})

	failCases := map[string]string{
		"empty":     "",
		"plaintext": "WeakPassword123",
		"argon2":    "$argon2id$v=19$m=47104,t=1,p=1$fYJT8cAysfuYCBjxTEmCkaCz0RfRtlLQOw2Fj8gM5Uw$DVpK1dNdPRmhL8oTSo+RlA",
	}

	for name, raw := range failCases {
		t.Run("fail, "+name, func(t *testing.T) {
			_, err := krypto.ParseBcryptHash(raw)
			if !errors.Is(err, krypto.ErrInvalidHash) {
				t.Fatalf("expected krypto.ErrInvalidHash, got %v", err)
			}
		})
	}

	t.Run("ok, zero hash matches nothing", func(t *testing.T) {
		var h krypto.BcryptHash
		if h.Match([]byte("")) {
			t.Errorf("zero hash should never match")
		}
	})
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
