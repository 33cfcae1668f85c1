package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

const objectIDPattern = `^[0-9a-f]{24}$`

// OpenAPI compiles the node into an OpenAPI schema, keeping only the
// properties visible in the given scope. InBoth keeps every property.
func (n *Node) OpenAPI(scope Scope) *openapi3.Schema {
	var s *openapi3.Schema

	switch n.Kind {
	case KindString:
		s = openapi3.NewStringSchema()
	case KindInteger:
		s = openapi3.NewIntegerSchema()
	case KindNumber:
		s = openapi3.NewFloat64Schema()
	case KindObjectID:
		s = openapi3.NewStringSchema().WithPattern(objectIDPattern)
	case KindBinary:
		s = openapi3.NewStringSchema().WithFormat("binary")
	case KindTime:
		s = openapi3.NewDateTimeSchema()
	case KindArray:
		s = openapi3.NewArraySchema()
		if n.Items != nil {
			s = s.WithItems(n.Items.OpenAPI(scope))
		}
	case KindObject:
		s = openapi3.NewObjectSchema()
		required := make([]string, 0)
		for _, p := range n.Props {
			if scope != InBoth && !p.Scope.includes(scope) {
				continue
			}
			s = s.WithProperty(p.Name, p.Node.OpenAPI(scope))
			if p.Required {
				required = append(required, p.Name)
			}
		}
		if len(required) > 0 {
			s.Required = required
		}
	default:
		s = &openapi3.Schema{}
	}

	if n.Minimum != nil {
		s = s.WithMin(*n.Minimum)
	}
	if n.Maximum != nil {
		s = s.WithMax(*n.Maximum)
	}
	if n.MinLength != nil {
		s = s.WithMinLength(*n.MinLength)
	}
	if n.MaxLength != nil {
		s = s.WithMaxLength(*n.MaxLength)
	}
	if n.MinItems != nil {
		s = s.WithMinItems(*n.MinItems)
	}
	if n.MaxItems != nil {
		s = s.WithMaxItems(*n.MaxItems)
	}
	if n.Pattern != "" {
		s = s.WithPattern(n.Pattern)
	}
	if n.Format != "" {
		s = s.WithFormat(n.Format)
	}
	if len(n.Enum) > 0 {
		s = s.WithEnum(n.Enum...)
	}

	s.Description = n.Description
	s.Example = n.Example

	return s
}
