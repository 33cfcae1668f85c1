package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// namespaceExists is the MongoDB error code returned when creating a
// collection that already exists.
const namespaceExists = 48

// SetupResult lists what Setup changed.
type SetupResult struct {
	Created []string
	Updated []string
	Indexes []string
}

// Setup installs the collections, their validators and their indexes.
// It can be run repeatedly; existing collections get their validator replaced.
func (g *Gateway) Setup(ctx context.Context) (SetupResult, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return SetupResult{}, err
	}

	var result SetupResult

	for _, def := range g.order {
		validator := def.Resource.Validator()

		err := database.CreateCollection(ctx, def.Name, options.CreateCollection().SetValidator(validator))
		switch {
		case err == nil:
			result.Created = append(result.Created, def.Name)
		case isCode(err, namespaceExists):
			err = database.RunCommand(ctx, bson.D{
				{Key: "collMod", Value: def.Name},
				{Key: "validator", Value: validator},
			}).Err()
			if err != nil {
				return result, fmt.Errorf("failed to update validator of %s: %w", def.Name, err)
			}
			result.Updated = append(result.Updated, def.Name)
		default:
			return result, fmt.Errorf("failed to create collection %s: %w", def.Name, err)
		}

		if len(def.Indexes) == 0 {
			continue
		}

		names, err := database.Collection(def.Name).Indexes().CreateMany(ctx, def.Indexes)
		if err != nil {
			return result, fmt.Errorf("failed to create indexes on %s: %w", def.Name, err)
		}
		for _, n := range names {
			result.Indexes = append(result.Indexes, def.Name+"."+n)
		}
	}

	g.logger.Info("database setup complete", "created", result.Created, "updated", result.Updated, "indexes", result.Indexes)

	return result, nil
}

func isCode(err error, code int32) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
