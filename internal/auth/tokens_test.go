package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/willemschots/tuffyestates/internal/auth"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

const testSigningKey = "2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d"

func newTokens(t *testing.T) *auth.Tokens {
	t.Helper()

	tokens, err := auth.NewTokens(must(krypto.ParseKey(testSigningKey)), time.Hour)
	if err != nil {
		t.Fatalf("failed to create tokens: %v", err)
	}

	return tokens
}

func Test_Tokens(t *testing.T) {
	user := auth.User{
		ID:          "5bd3ddfdf20ff91132255496",
		Permissions: []string{auth.PermissionUser},
	}

	t.Run("ok, issue and verify", func(t *testing.T) {
		tokens := newTokens(t)

		tok, err := tokens.Issue(user)
		if err != nil {
			t.Fatalf("failed to issue: %v", err)
		}

		claims, err := tokens.Verify(tok.Value)
		if err != nil {
			t.Fatalf("failed to verify: %v", err)
		}

		if claims.UserID != user.ID {
			t.Errorf("got user id %q, want %q", claims.UserID, user.ID)
		}

		if !claims.HasPermission(auth.PermissionUser) {
			t.Errorf("expected permission %q in %v", auth.PermissionUser, claims.Permissions)
		}
	})

	t.Run("fail, expired", func(t *testing.T) {
		tokens := newTokens(t)

		tok := must(tokens.Issue(user))

		tokens.NowFunc = func() time.Time {
			return time.Now().Add(time.Hour + time.Minute)
		}

		_, err := tokens.Verify(tok.Value)
		if !errors.Is(err, errorz.ErrUnauthorized) {
			t.Fatalf("expected errorz.ErrUnauthorized, got %v", err)
		}
	})

	t.Run("fail, signed with other key", func(t *testing.T) {
		other, err := auth.NewTokens(must(krypto.ParseKey("90303dfed7994260ea4817a5ca8a392915cd401115b2f97495dadfcbcd14adbf")), time.Hour)
		if err != nil {
			t.Fatalf("failed to create tokens: %v", err)
		}

		tok := must(other.Issue(user))

		_, err = newTokens(t).Verify(tok.Value)
		if !errors.Is(err, errorz.ErrUnauthorized) {
			t.Fatalf("expected errorz.ErrUnauthorized, got %v", err)
		}
	})

	t.Run("fail, other algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to sign: %v", err)
		}

		_, err = newTokens(t).Verify(raw)
		if !errors.Is(err, errorz.ErrUnauthorized) {
			t.Fatalf("expected errorz.ErrUnauthorized, got %v", err)
		}
	})

	failCases := map[string]string{
		"empty":     "",
		"malformed": "not.a.token",
	}

	for name, raw := range failCases {
		t.Run("fail, "+name, func(t *testing.T) {
			_, err := newTokens(t).Verify(raw)
			if !errors.Is(err, errorz.ErrUnauthorized) {
				t.Fatalf("expected errorz.ErrUnauthorized, got %v", err)
			}
		})
	}

	t.Run("fail, no key", func(t *testing.T) {
		_, err := auth.NewTokens(krypto.Key{}, time.Hour)
		if !errors.Is(err, auth.ErrNoSigningKey) {
			t.Fatalf("expected auth.ErrNoSigningKey, got %v", err)
		}
	})
}
