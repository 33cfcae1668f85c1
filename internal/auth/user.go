package auth

import (
	"time"

	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

// PermissionUser is granted to every registered user.
const PermissionUser = "user"

// User contains the data for a user.
type User struct {
	ID           string
	Email        email.Address
	PasswordHash krypto.BcryptHash
	Permissions  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials identify a user.
type Credentials struct {
	Email    email.Address
	Password Password
}
