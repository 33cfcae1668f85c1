package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/willemschots/tuffyestates/internal/auth"
	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/property"
)

// TemplateName is the email template used to notify owners.
const TemplateName = "offer-received"

// Offer is made by a prospective buyer for a listed property.
// It is only mailed, never stored.
type Offer struct {
	Name  string
	Phone string
	// HomeOffer is the ID of the property the offer is for.
	HomeOffer string
	// CashOffer is optional, zero means no cash is offered.
	CashOffer int
	Comments  string
}

// Properties looks up listed properties.
type Properties interface {
	Get(ctx context.Context, id string) (property.Property, error)
}

// Users looks up registered users.
type Users interface {
	User(ctx context.Context, id string) (auth.User, error)
}

// Mailer sends templated emails.
type Mailer interface {
	SendMessage(ctx context.Context, name string, recipient, replyTo email.Address, data any) error
}

// Service forwards offers to property owners.
type Service struct {
	properties Properties
	users      Users
	mailer     Mailer
}

func NewService(properties Properties, users Users, mailer Mailer) *Service {
	return &Service{
		properties: properties,
		users:      users,
		mailer:     mailer,
	}
}

// messageData is available in the offer-received template.
type messageData struct {
	Name      string
	Phone     string
	ReplyTo   email.Address
	Address   string
	CashOffer int
	Comments  string
}

// Submit emails the offer to the owner of the property. sender is the
// authenticated caller and may be nil, when set the owner can reply to them.
func (s *Service) Submit(ctx context.Context, o Offer, sender *auth.User) error {
	p, err := s.properties.Get(ctx, o.HomeOffer)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return errorz.NewPublic("Property not found", errorz.ErrBadRequest)
		}
		return err
	}

	owner, err := s.users.User(ctx, p.Owner)
	if err != nil {
		return fmt.Errorf("failed to find owner of property %s: %w", p.ID, err)
	}

	var replyTo email.Address
	if sender != nil {
		replyTo = sender.Email
	}

	data := messageData{
		Name:      o.Name,
		Phone:     o.Phone,
		ReplyTo:   replyTo,
		Address:   p.Address,
		CashOffer: o.CashOffer,
		Comments:  o.Comments,
	}

	return s.mailer.SendMessage(ctx, TemplateName, owner.Email, replyTo, data)
}
