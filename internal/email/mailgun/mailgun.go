// Package mailgun sends emails through the Mailgun HTTP API.
package mailgun

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

// ErrRejected is returned when Mailgun refuses the message.
var ErrRejected = errors.New("mailgun rejected email")

// Settings contains the settings for the Mailgun API.
type Settings struct {
	APIHost string
	// Domain is the sending domain. The domain of the from address is
	// used when it is empty.
	Domain   string
	Username string
	Password krypto.Secret
}

// Sender is an email sender that sends emails using the Mailgun API.
type Sender struct {
	client   *http.Client
	settings Settings
}

// NewSender creates a new sender.
func NewSender(client *http.Client, s Settings) *Sender {
	return &Sender{
		client:   client,
		settings: s,
	}
}

type result struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send posts msg as a plain text email.
func (s *Sender) Send(ctx context.Context, msg email.Message) error {
	domain := s.settings.Domain
	if domain == "" {
		domain = msg.From.Domain()
	}
	if domain == "" {
		return errors.New("no sending domain")
	}

	// The official client pulls in far more than one endpoint needs.
	fields := [][2]string{
		{"from", msg.FromHeader()},
		{"to", string(msg.To)},
		{"subject", msg.Subject},
		{"text", msg.Body},
	}
	if msg.ReplyTo != "" {
		fields = append(fields, [2]string{"h:Reply-To", string(msg.ReplyTo)})
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		err := w.WriteField(f[0], f[1])
		if err != nil {
			return err
		}
	}

	err := w.Close()
	if err != nil {
		return err
	}

	endpoint := url.URL{
		Scheme: "https",
		Host:   s.settings.APIHost,
		Path:   "/v3/" + domain + "/messages",
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth(s.settings.Username, s.settings.Password.SecretValue())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var res result
		// Error bodies are not always json, the status is enough then.
		_ = json.NewDecoder(resp.Body).Decode(&res)
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, res.Message)
	}

	return nil
}
