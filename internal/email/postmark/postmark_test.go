package postmark_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/email/postmark"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

func Test_Sender_Send(t *testing.T) {
	msg := email.Message{
		From:     "tuffyestates@example.com",
		FromName: "Tuffy Estates",
		To:       "owner@example.com",
		ReplyTo:  "buyer@example.com",
		Subject:  "Offer",
		Body:     "Name: John Doe",
	}

	tests := map[string]struct {
		status       int
		response     string
		wantErr      bool
		wantRejected bool
	}{
		"ok": {
			status:   http.StatusOK,
			response: `{"ErrorCode":0,"Message":"OK","MessageID":"abc"}`,
		},
		"fail, error code": {
			status:       http.StatusUnprocessableEntity,
			response:     `{"ErrorCode":300,"Message":"Invalid email request"}`,
			wantErr:      true,
			wantRejected: true,
		},
		"fail, error status without code": {
			status:       http.StatusInternalServerError,
			response:     `{"ErrorCode":0,"Message":"Oops"}`,
			wantErr:      true,
			wantRejected: true,
		},
		"fail, not json": {
			status:   http.StatusOK,
			response: `<html></html>`,
			wantErr:  true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var got map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Postmark-Server-Token") != "server-token" {
					w.WriteHeader(http.StatusUnauthorized)
					fmt.Fprint(w, `{"ErrorCode":10,"Message":"Bad or missing API token"}`)
					return
				}
				if r.URL.Path != "/email" {
					w.WriteHeader(http.StatusNotFound)
					fmt.Fprint(w, `{"ErrorCode":404,"Message":"Not found"}`)
					return
				}
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.response)
			}))
			defer srv.Close()

			u, err := url.Parse(srv.URL)
			require.NoError(t, err)

			s := postmark.NewSender(srv.Client(), postmark.Settings{
				APIURL:        u,
				ServerToken:   krypto.NewSecret("server-token"),
				MessageStream: "outbound",
			})

			err = s.Send(context.Background(), msg)
			if tc.wantErr {
				require.Error(t, err)
				require.Equal(t, tc.wantRejected, errors.Is(err, postmark.ErrRejected))
				return
			}

			require.NoError(t, err)
			require.Equal(t, `"Tuffy Estates" <tuffyestates@example.com>`, got["From"])
			require.Equal(t, "owner@example.com", got["To"])
			require.Equal(t, "buyer@example.com", got["ReplyTo"])
			require.Equal(t, "Name: John Doe", got["TextBody"])
			require.Equal(t, "outbound", got["MessageStream"])
			require.Equal(t, false, got["TrackOpens"])
		})
	}
}
