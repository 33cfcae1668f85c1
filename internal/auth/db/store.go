package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/willemschots/tuffyestates/internal/auth"
	"github.com/willemschots/tuffyestates/internal/db"
	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

// NowFunc is a function that returns the current time.
type NowFunc func() time.Time

// Store keeps users in the users collection.
type Store struct {
	gw      *db.Gateway
	nowFunc NowFunc
}

// New creates a new Store.
func New(gw *db.Gateway, nowFunc NowFunc) *Store {
	return &Store{
		gw:      gw,
		nowFunc: nowFunc,
	}
}

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"password"`
	Permissions []string           `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateUser inserts the user and sets its ID and timestamps.
func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	m, err := s.gw.Model(ctx, db.Users)
	if err != nil {
		return err
	}

	// MongoDB stores times with millisecond precision.
	now := s.nowFunc().UTC().Truncate(time.Millisecond)

	doc := userDoc{
		ID:          primitive.NewObjectID(),
		Email:       string(u.Email),
		Password:    u.PasswordHash.String(),
		Permissions: u.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Permissions == nil {
		doc.Permissions = []string{}
	}

	err = m.Check(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", errorz.ErrConstraintViolated, err)
	}

	_, err = m.Coll.InsertOne(ctx, doc)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	u.ID = doc.ID.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now

	return nil
}

// FindUsers returns the users matching the filter, ordered by ID.
func (s *Store) FindUsers(ctx context.Context, filter *auth.UserFilter) ([]auth.User, error) {
	m, err := s.gw.Model(ctx, db.Users)
	if err != nil {
		return nil, err
	}

	var f db.Filter
	if len(filter.IDs) > 0 {
		ids := make([]any, 0, len(filter.IDs))
		for _, raw := range filter.IDs {
			id, err := db.ObjectID(raw)
			if err != nil {
				// malformed ids match nothing.
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return []auth.User{}, nil
		}
		f.In("_id", ids...)
	}

	if len(filter.Emails) > 0 {
		emails := make([]any, 0, len(filter.Emails))
		for _, e := range filter.Emails {
			emails = append(emails, string(e))
		}
		f.In("email", emails...)
	}

	cur, err := m.Coll.Find(ctx, f.D(), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	var docs []userDoc
	err = cur.All(ctx, &docs)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	users := make([]auth.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}

func (d userDoc) toUser() (auth.User, error) {
	hash, err := krypto.ParseBcryptHash(d.Password)
	if err != nil {
		return auth.User{}, fmt.Errorf("user %s: %w", d.ID.Hex(), err)
	}

	return auth.User{
		ID:           d.ID.Hex(),
		Email:        email.Address(d.Email),
		PasswordHash: hash,
		Permissions:  d.Permissions,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}
