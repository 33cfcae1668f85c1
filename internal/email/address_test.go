package email_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/willemschots/tuffyestates/internal/email"
)

func Test_ParseAddress(t *testing.T) {
	okTests := map[string]struct {
		raw  string
		want email.Address
	}{
		"shortest possible": {
			raw:  "a@b",
			want: "a@b",
		},
		"typical": {
			raw:  "owner@example.com",
			want: "owner@example.com",
		},
		"whitespace is trimmed": {
			raw:  " 	owner@example.com  ",
			want: "owner@example.com",
		},
		"lower cased": {
			raw:  "Owner@Example.COM",
			want: "owner@example.com",
		},
		"plus addressing": {
			raw:  "owner+listings@example.com",
			want: "owner+listings@example.com",
		},
	}

	for name, tc := range okTests {
		t.Run(name, func(t *testing.T) {
			got, err := email.ParseAddress(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	failTests := map[string]string{
		"empty":                 "",
		"whitespace only":       " 	",
		"missing @":             "owner.example.com",
		"missing domain":        "owner@",
		"missing local part":    "@example.com",
		"with name":             "Owner <owner@example.com>",
		"with name and comment": "Owner <owner@example.com>(comment)",
		"two addresses":         "a@example.com, b@example.com",
		"too long":              strings.Repeat("a", 250) + "@example.com",
	}

	for name, raw := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := email.ParseAddress(raw)
			if !errors.Is(err, email.ErrInvalidEmail) {
				t.Fatalf("expected error to be email.ErrInvalidEmail via errors.Is, but got %v", err)
			}
		})
	}
}

func Test_Address_Domain(t *testing.T) {
	got := email.Address("owner@example.com").Domain()
	if got != "example.com" {
		t.Errorf("got %q, want %q", got, "example.com")
	}
}

func Test_Address_JSON(t *testing.T) {
	var v struct {
		Email email.Address `json:"email"`
	}

	err := json.Unmarshal([]byte(`{"email":"Owner@Example.com"}`), &v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(data) != `{"email":"owner@example.com"}` {
		t.Errorf("got %s", data)
	}

	err = json.Unmarshal([]byte(`{"email":"nope"}`), &v)
	if !errors.Is(err, email.ErrInvalidEmail) {
		t.Errorf("expected email.ErrInvalidEmail, got %v", err)
	}
}
