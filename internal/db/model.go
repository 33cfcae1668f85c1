package db

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/willemschots/tuffyestates/internal/schema"
)

const (
	Users      = "users"
	Properties = "properties"
)

// ModelDef binds a collection to the resource definition its documents must satisfy.
type ModelDef struct {
	Name     string
	Resource *schema.Node
	Indexes  []mongo.IndexModel
}

// Model is a collection together with its storage checker.
type Model struct {
	Coll    *mongo.Collection
	checker *schema.Checker
}

// Check validates a document before it is written.
func (m *Model) Check(doc any) error {
	return m.checker.Check(doc)
}

// Models returns the definitions of all collections.
func Models() []ModelDef {
	return []ModelDef{
		{
			Name:     Users,
			Resource: schema.User,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("email_unique"),
				},
			},
		},
		{
			Name:     Properties,
			Resource: schema.Property,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "owner", Value: 1}},
					Options: options.Index().SetName("owner"),
				},
				{
					Keys:    bson.D{{Key: "price", Value: 1}},
					Options: options.Index().SetName("price"),
				},
			},
		},
	}
}
