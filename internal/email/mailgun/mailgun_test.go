package mailgun_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/email/mailgun"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

func Test_Sender_Send(t *testing.T) {
	msg := email.Message{
		From:     "tuffyestates@mg.example.com",
		FromName: "Tuffy Estates",
		To:       "owner@example.com",
		ReplyTo:  "buyer@example.com",
		Subject:  "Offer",
		Body:     "Name: John Doe",
	}

	// newServer accepts messages for mg.example.com only.
	newServer := func(t *testing.T, form *map[string][]string) *httptest.Server {
		srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "api" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			if r.URL.Path != "/v3/mg.example.com/messages" {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Domain not found"}`)
				return
			}

			err := r.ParseMultipartForm(1 << 20)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			*form = r.MultipartForm.Value

			fmt.Fprint(w, `{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`)
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	tests := map[string]string{
		"ok, configured domain":       "mg.example.com",
		"ok, domain from the address": "",
	}

	for name, domain := range tests {
		t.Run(name, func(t *testing.T) {
			var form map[string][]string
			srv := newServer(t, &form)

			s := mailgun.NewSender(srv.Client(), mailgun.Settings{
				APIHost:  strings.TrimPrefix(srv.URL, "https://"),
				Domain:   domain,
				Username: "api",
				Password: krypto.NewSecret("secret"),
			})

			err := s.Send(context.Background(), msg)
			require.NoError(t, err)
			require.Equal(t, []string{`"Tuffy Estates" <tuffyestates@mg.example.com>`}, form["from"])
			require.Equal(t, []string{"owner@example.com"}, form["to"])
			require.Equal(t, []string{"buyer@example.com"}, form["h:Reply-To"])
			require.Equal(t, []string{"Name: John Doe"}, form["text"])
		})
	}

	t.Run("fail, unknown domain", func(t *testing.T) {
		var form map[string][]string
		srv := newServer(t, &form)

		s := mailgun.NewSender(srv.Client(), mailgun.Settings{
			APIHost:  strings.TrimPrefix(srv.URL, "https://"),
			Domain:   "other.example.com",
			Username: "api",
			Password: krypto.NewSecret("secret"),
		})

		err := s.Send(context.Background(), msg)
		require.True(t, errors.Is(err, mailgun.ErrRejected), "got %v", err)
		require.Contains(t, err.Error(), "Domain not found")
	})

	t.Run("fail, wrong credentials", func(t *testing.T) {
		var form map[string][]string
		srv := newServer(t, &form)

		s := mailgun.NewSender(srv.Client(), mailgun.Settings{
			APIHost: strings.TrimPrefix(srv.URL, "https://"),
			Domain:  "mg.example.com",
		})

		err := s.Send(context.Background(), msg)
		require.True(t, errors.Is(err, mailgun.ErrRejected), "got %v", err)
	})
}
