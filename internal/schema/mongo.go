package schema

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Validator compiles the storage scope of the node into a MongoDB
// collection validator: {"$jsonSchema": ...}.
func (n *Node) Validator() bson.M {
	return bson.M{"$jsonSchema": n.jsonSchema()}
}

func (n *Node) jsonSchema() bson.M {
	m := bson.M{}

	switch n.Kind {
	case KindString:
		m["bsonType"] = "string"
	case KindInteger:
		m["bsonType"] = bson.A{"int", "long"}
	case KindNumber:
		m["bsonType"] = bson.A{"double", "int", "long", "decimal"}
	case KindObjectID:
		m["bsonType"] = "objectId"
	case KindBinary:
		m["bsonType"] = "binData"
	case KindTime:
		m["bsonType"] = "date"
	case KindArray:
		m["bsonType"] = "array"
		if n.Items != nil {
			m["items"] = n.Items.jsonSchema()
		}
	case KindObject:
		m["bsonType"] = "object"
		props := bson.M{}
		required := bson.A{}
		for _, p := range n.Props {
			if !p.Scope.includes(InStorage) {
				continue
			}
			props[p.Name] = p.Node.jsonSchema()
			if p.Required {
				required = append(required, p.Name)
			}
		}
		if len(props) > 0 {
			m["properties"] = props
		}
		if len(required) > 0 {
			m["required"] = required
		}
	}

	if n.Minimum != nil {
		m["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		m["maximum"] = *n.Maximum
	}
	if n.MinLength != nil {
		m["minLength"] = *n.MinLength
	}
	if n.MaxLength != nil {
		m["maxLength"] = *n.MaxLength
	}
	if n.MinItems != nil {
		m["minItems"] = *n.MinItems
	}
	if n.MaxItems != nil {
		m["maxItems"] = *n.MaxItems
	}
	if n.Pattern != "" {
		m["pattern"] = n.Pattern
	}
	if len(n.Enum) > 0 {
		m["enum"] = bson.A(n.Enum)
	}
	if n.Description != "" {
		m["description"] = n.Description
	}

	return m
}
