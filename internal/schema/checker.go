package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/willemschots/tuffyestates/internal/errorz"
)

// Checker validates values against one scope of a definition.
type Checker struct {
	schema *openapi3.Schema
}

// NewChecker compiles n for the given scope.
func NewChecker(n *Node, scope Scope) *Checker {
	return &Checker{schema: n.OpenAPI(scope)}
}

// Schema returns the compiled OpenAPI schema.
func (c *Checker) Schema() *openapi3.Schema {
	return c.schema
}

// Check validates v. Structs are checked by their JSON representation.
// Violations are returned as errorz.InvalidInput.
func (c *Checker) Check(v any) error {
	doc, err := toJSONValue(v)
	if err != nil {
		return err
	}

	err = c.schema.VisitJSON(doc, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var inv errorz.InvalidInput
	collect(err, &inv)
	if len(inv) == 0 {
		return err
	}

	return inv
}

func collect(err error, inv *errorz.InvalidInput) {
	var me openapi3.MultiError
	if errors.As(err, &me) {
		for _, e := range me {
			collect(e, inv)
		}
		return
	}

	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		*inv = append(*inv, errorz.Keyed{
			Key: keyOf(se),
			Err: errors.New(se.Reason),
		})
		return
	}

	*inv = append(*inv, err)
}

// keyOf returns the dotted path of the offending value. For a missing
// required property the pointer already ends with the property name.
func keyOf(se *openapi3.SchemaError) string {
	return strings.Join(se.JSONPointer(), ".")
}

func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value for validation: %w", err)
	}

	var out any
	err = json.Unmarshal(b, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal value for validation: %w", err)
	}

	return out, nil
}
