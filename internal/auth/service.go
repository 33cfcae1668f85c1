package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

// ErrWrongPassword is returned when the credentials name an existing user
// but the password does not match.
var ErrWrongPassword = errors.New("wrong password")

// Session is the result of a successful login.
type Session struct {
	Token  Token
	UserID string
}

// Service is the type that provides the main rules for
// authentication.
type Service struct {
	store  Store
	tokens *Tokens

	// comparisonHash is used to compare passwords when no user was found.
	comparisonHash krypto.BcryptHash

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store, tokens *Tokens) (*Service, error) {
	random := make([]byte, 32)
	_, err := rand.Read(random)
	if err != nil {
		return nil, err
	}

	hash, err := krypto.HashBcrypt(random)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		store:          s,
		tokens:         tokens,
		comparisonHash: hash,
		NowFunc:        time.Now,
	}

	return svc, nil
}

// Register creates a new user with the provided credentials and returns
// a token for it.
func (s *Service) Register(ctx context.Context, c Credentials) (Token, error) {
	pwdHash, err := c.Password.Hash()
	if err != nil {
		return Token{}, err
	}

	now := s.NowFunc()

	user := User{
		Email:        c.Email,
		PasswordHash: pwdHash,
		Permissions:  []string{PermissionUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.CreateUser(ctx, &user)
	if err != nil {
		if errors.Is(err, errorz.ErrDuplicate) {
			return Token{}, errorz.NewPublic("User already exists", err)
		}
		return Token{}, err
	}

	return s.tokens.Issue(user)
}

// Login checks the credentials and issues a token when they are valid.
func (s *Service) Login(ctx context.Context, c Credentials) (Session, error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		Emails: []email.Address{c.Email},
	})
	if err != nil {
		return Session{}, err
	}

	if len(users) != 1 {
		// Even if no user is found we compare to a hash to keep the timing
		// of both failures similar.
		_ = c.Password.Match(s.comparisonHash)
		return Session{}, errorz.NewPublic("User not found", errorz.ErrNotFound)
	}

	if !c.Password.Match(users[0].PasswordHash) {
		return Session{}, errorz.NewPublic("Wrong password", ErrWrongPassword)
	}

	tok, err := s.tokens.Issue(users[0])
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:  tok,
		UserID: users[0].ID,
	}, nil
}

// User returns the user with the given ID.
func (s *Service) User(ctx context.Context, id string) (User, error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		IDs: []string{id},
	})
	if err != nil {
		return User{}, err
	}

	if len(users) != 1 {
		return User{}, errorz.NewPublic("User not found", errorz.ErrNotFound)
	}

	return users[0], nil
}

// Authenticate verifies a bearer token and returns its claims.
func (s *Service) Authenticate(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, fmt.Errorf("%w: no token", errorz.ErrUnauthorized)
	}

	return s.tokens.Verify(raw)
}
