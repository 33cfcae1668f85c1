package email

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// TemplateElement is used by a renderer to identify the different parts of an email template.
type TemplateElement string

const (
	ElementSubject TemplateElement = "subject"
	ElementBody    TemplateElement = "body"
)

// Renderer is responsible for rendering email templates.
type Renderer interface {
	Render(w io.Writer, name string, element TemplateElement, data any) error
}

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	// From may be empty when the sender knows its own address.
	From     Address
	FromName string
}

// Service provides the main functionality for sending emails.
type Service struct {
	renderer Renderer
	sender   Sender
	cfg      ServiceConfig
}

func NewService(renderer Renderer, sender Sender, cfg ServiceConfig) *Service {
	return &Service{
		renderer: renderer,
		sender:   sender,
		cfg:      cfg,
	}
}

// SendMessage renders the named template with data and sends it to recipient.
// replyTo may be empty.
func (s *Service) SendMessage(ctx context.Context, name string, recipient, replyTo Address, data any) error {
	var subject, body strings.Builder

	err := s.renderer.Render(&subject, name, ElementSubject, data)
	if err != nil {
		return fmt.Errorf("failed to render subject of %s: %w", name, err)
	}

	err = s.renderer.Render(&body, name, ElementBody, data)
	if err != nil {
		return fmt.Errorf("failed to render body of %s: %w", name, err)
	}

	msg := Message{
		From:     s.cfg.From,
		FromName: s.cfg.FromName,
		To:       recipient,
		ReplyTo:  replyTo,
		Subject:  strings.TrimSpace(subject.String()),
		Body:     strings.TrimSpace(body.String()),
	}

	err = s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", name, err)
	}

	return nil
}
