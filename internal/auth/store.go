package auth

import (
	"context"

	"github.com/willemschots/tuffyestates/internal/email"
)

// UserFilter is used filter users.
// Returned users must match all the provided fields.
// If a field is empty or nil, it's ignored.
type UserFilter struct {
	IDs    []string
	Emails []email.Address
}

// Store provides access to the user store.
type Store interface {
	// CreateUser stores a new user and sets its ID and timestamps.
	// A user with the same email results in errorz.ErrDuplicate, any other
	// rejected user in errorz.ErrConstraintViolated.
	CreateUser(ctx context.Context, u *User) error
	FindUsers(ctx context.Context, filter *UserFilter) ([]User, error)
}
