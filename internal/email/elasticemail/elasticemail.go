// Package elasticemail sends emails through the ElasticEmail v2 web API.
package elasticemail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

// Settings contains the settings for the ElasticEmail API.
type Settings struct {
	APIURL *url.URL
	APIKey krypto.Secret
}

// Sender is an email sender that sends emails using the ElasticEmail API.
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

// Account is the sending account as reported by the API.
type Account struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type response[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    T      `json:"data"`
}

// LoadAccount loads the account the API key belongs to.
func (s *Sender) LoadAccount(ctx context.Context) (Account, error) {
	var res response[Account]
	err := s.call(ctx, "account/load", url.Values{}, &res)
	if err != nil {
		return Account{}, err
	}

	if !res.Success {
		return Account{}, fmt.Errorf("failed to load account: %s", res.Error)
	}

	return res.Data, nil
}

// Send loads the account and sends the message as plain text. When the
// message has no sender address, the account email is used.
func (s *Sender) Send(ctx context.Context, msg email.Message) error {
	account, err := s.LoadAccount(ctx)
	if err != nil {
		return err
	}

	if msg.From == "" {
		if account.Email == "" {
			return errors.New("no from address and account has no email")
		}
		msg.From = email.Address(account.Email)
	}

	form := url.Values{}
	form.Set("from", string(msg.From))
	form.Set("fromName", msg.FromName)
	form.Set("to", string(msg.To))
	form.Set("subject", msg.Subject)
	form.Set("bodyText", msg.Body)
	form.Set("isTransactional", "true")
	if msg.ReplyTo != "" {
		form.Set("replyTo", string(msg.ReplyTo))
	}

	var res response[json.RawMessage]
	err = s.call(ctx, "email/send", form, &res)
	if err != nil {
		return err
	}

	if !res.Success {
		return fmt.Errorf("failed to send email: %s", res.Error)
	}

	return nil
}

func (s *Sender) call(ctx context.Context, path string, form url.Values, target any) error {
	form.Set("apikey", s.settings.APIKey.SecretValue())

	endpoint := s.settings.APIURL.JoinPath("v2", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s did not succeed: %d", path, resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(target)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
