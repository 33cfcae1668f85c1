package errorz

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConstraintViolated = errors.New("constraint violated")
	// ErrDuplicate is a constraint violation on a unique field.
	ErrDuplicate = fmt.Errorf("duplicate: %w", ErrConstraintViolated)
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadRequest         = errors.New("bad request")
	// ErrUpstream indicates a third party service (geocoding, email) could not be reached.
	ErrUpstream = errors.New("upstream service failed")
)

// documentValidationFailure is the MongoDB error code for writes rejected by a
// collection validator.
const documentValidationFailure = 121

// MapDBErr maps database errors to appropriate errorz errors.
// If err is nil, MapDBErr returns nil.
func MapDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicate, err)
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == documentValidationFailure {
				return errors.Join(ErrConstraintViolated, err)
			}
		}
	}

	return err
}
