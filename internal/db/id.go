package db

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/willemschots/tuffyestates/internal/errorz"
)

// NewID allocates a new document identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ObjectID parses a hex identifier. Malformed identifiers can not refer to
// any document, so they are reported as not found.
func ObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", errorz.ErrNotFound, hex)
	}
	return id, nil
}
