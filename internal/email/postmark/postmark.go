// Package postmark sends emails through the Postmark HTTP API.
package postmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

// ErrRejected is returned when Postmark refuses the message.
var ErrRejected = errors.New("postmark rejected email")

// Settings contains the settings for the Postmark API.
type Settings struct {
	// APIURL is the base URL, the email endpoint is appended.
	APIURL        *url.URL
	ServerToken   krypto.Secret
	MessageStream string
}

// Sender is an email sender that sends emails using the Postmark API.
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

type message struct {
	From          string `json:"From"`
	To            string `json:"To"`
	ReplyTo       string `json:"ReplyTo,omitempty"`
	Subject       string `json:"Subject"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
	TrackOpens    bool   `json:"TrackOpens"`
}

type result struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
	MessageID string `json:"MessageID"`
}

// Send posts msg as a plain text email.
func (s *Sender) Send(ctx context.Context, msg email.Message) error {
	body, err := json.Marshal(message{
		From:          msg.FromHeader(),
		To:            string(msg.To),
		ReplyTo:       string(msg.ReplyTo),
		Subject:       msg.Subject,
		TextBody:      msg.Body,
		MessageStream: s.settings.MessageStream,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	endpoint := s.settings.APIURL.JoinPath("email")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", s.settings.ServerToken.SecretValue())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Postmark reports failures in the body, also for non 2xx statuses.
	var res result
	err = json.NewDecoder(resp.Body).Decode(&res)
	if err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if res.ErrorCode != 0 || resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d, code %d: %s", ErrRejected, resp.StatusCode, res.ErrorCode, res.Message)
	}

	return nil
}
