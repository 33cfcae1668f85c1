package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/geocode"
)

// Geocoder resolves addresses.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (geocode.Result, error)
}

// Images generates and removes the image variants of a property.
type Images interface {
	Generate(ctx context.Context, id string, src []byte) error
	Remove(id string) error
}

// ErrFunc is a function that handles errors that can not be returned
// to the caller.
type ErrFunc func(error)

// Service provides the rules for listing properties.
type Service struct {
	store      Store
	geocoder   Geocoder
	images     Images
	errHandler ErrFunc
}

func NewService(store Store, geocoder Geocoder, images Images, errHandler ErrFunc) *Service {
	return &Service{
		store:      store,
		geocoder:   geocoder,
		images:     images,
		errHandler: errHandler,
	}
}

// Create lists a new property and returns its ID.
//
// The address is replaced by the geocoded address and the location is
// derived from it. Image variants are generated before the property is
// stored, so a stored property always has a complete image set. If storing
// fails the variants are removed again.
func (s *Service) Create(ctx context.Context, d Draft) (string, error) {
	if d.Owner == "" {
		return "", fmt.Errorf("%w: no owner", errorz.ErrUnauthorized)
	}

	loc, err := s.geocoder.Resolve(ctx, d.Address)
	if err != nil {
		return "", err
	}

	id := s.store.NewID()

	err = s.images.Generate(ctx, id, d.Image)
	if err != nil {
		return "", err
	}

	p := Property{
		ID:          id,
		Owner:       d.Owner,
		Address:     loc.FormattedAddress,
		Price:       d.Price,
		Description: d.Description,
		Location: Location{
			Type:        "Point",
			Coordinates: [2]float64{loc.Latitude, loc.Longitude},
		},
		Specification: d.Specification,
	}

	err = s.store.Create(ctx, &p)
	if err != nil {
		return "", errors.Join(err, s.images.Remove(id))
	}

	return id, nil
}

// List returns the properties matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Property, error) {
	return s.store.Find(ctx, &Filter{
		Query: q.normalize(),
	})
}

// ListByOwner returns the properties of owner.
func (s *Service) ListByOwner(ctx context.Context, owner string, offset, limit int) ([]Property, error) {
	return s.store.Find(ctx, &Filter{
		Owner: owner,
		Query: Query{Offset: offset, Limit: limit}.normalize(),
	})
}

// Get returns a single property.
func (s *Service) Get(ctx context.Context, id string) (Property, error) {
	props, err := s.store.Find(ctx, &Filter{
		IDs:   []string{id},
		Query: Query{Limit: 1},
	})
	if err != nil {
		return Property{}, err
	}

	if len(props) != 1 {
		return Property{}, errorz.NewPublic("Property not found", errorz.ErrNotFound)
	}

	return props[0], nil
}

// Update changes a property owned by patch.Owner.
func (s *Service) Update(ctx context.Context, patch Patch) error {
	err := s.store.Update(ctx, patch)
	if errors.Is(err, errorz.ErrNotFound) {
		return errorz.NewPublic("Property not found", err)
	}
	return err
}

// Delete removes a property owned by owner together with its images.
func (s *Service) Delete(ctx context.Context, id, owner string) error {
	err := s.store.Delete(ctx, id, owner)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return errorz.NewPublic("Property not found", err)
		}
		return err
	}

	// The property is gone, leftover images are cleaned up by the sweeper.
	err = s.images.Remove(id)
	if err != nil {
		s.errHandler(fmt.Errorf("failed to remove images of property %s: %w", id, err))
	}

	return nil
}
