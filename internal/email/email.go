package email

import (
	"context"
	"net/mail"
)

// Message is a plain text email.
type Message struct {
	From     Address
	FromName string
	To       Address
	// ReplyTo is optional.
	ReplyTo Address
	Subject string
	Body    string
}

// Sender is responsible for actually sending an email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// FromHeader formats the sender as used in a From header.
func (m Message) FromHeader() string {
	if m.FromName == "" {
		return string(m.From)
	}

	a := mail.Address{Name: m.FromName, Address: string(m.From)}
	return a.String()
}
