package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/willemschots/tuffyestates/internal"
	"github.com/willemschots/tuffyestates/internal/schema"
)

const bearerScheme = "bearer"

// openAPIDoc describes the registered routes.
func (s *Server) openAPIDoc() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Tuffy Estates",
			Description: "List properties for sale and send offers to their owners.",
			Version:     internal.CurrentBuild.Version(),
		},
		Servers: openapi3.Servers{{URL: APIPrefix}},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerScheme: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	for _, rt := range s.routes {
		doc.AddOperation(rt.path, rt.method, operation(rt))
	}

	return doc
}

func operation(rt *route) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = rt.operationID
	op.Summary = rt.summary
	op.Tags = []string{rt.tag}

	if rt.pathParams != nil {
		for _, p := range rt.pathParams.Props {
			op.AddParameter(openapi3.NewPathParameter(p.Name).
				WithSchema(p.Node.OpenAPI(schema.InRequest)))
		}
	}

	if rt.query != nil {
		for _, p := range rt.query.Props {
			op.AddParameter(openapi3.NewQueryParameter(p.Name).
				WithSchema(p.Node.OpenAPI(schema.InRequest)).
				WithRequired(p.Required))
		}
	}

	if rt.body != nil {
		content := openapi3.NewContent()
		for _, ct := range rt.contentTypes {
			content[ct] = openapi3.NewMediaType().WithSchema(rt.body.OpenAPI(schema.InRequest))
		}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithContent(content).WithRequired(true),
		}
	}

	success := openapi3.NewResponse().WithDescription(http.StatusText(rt.status))
	if rt.output != nil {
		success = success.WithJSONSchema(rt.output.OpenAPI(schema.InStorage))
	}

	failure := openapi3.NewResponse().
		WithDescription("Error").
		WithJSONSchema(schema.ErrorOutput.OpenAPI(schema.InBoth))

	op.Responses = openapi3.NewResponsesWithCapacity(2)
	op.Responses.Set(strconv.Itoa(rt.status), &openapi3.ResponseRef{Value: success})
	op.Responses.Set("default", &openapi3.ResponseRef{Value: failure})

	switch rt.auth {
	case authRequired:
		op.Security = &openapi3.SecurityRequirements{
			openapi3.NewSecurityRequirement().Authenticate(bearerScheme),
		}
	case authOptional:
		op.Security = &openapi3.SecurityRequirements{
			openapi3.NewSecurityRequirement().Authenticate(bearerScheme),
			openapi3.NewSecurityRequirement(),
		}
	}

	return op
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.doc)
}

func (s *Server) serveOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	out, err := openAPIYAML(s.doc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(out)
}

// openAPIYAML converts the JSON form of doc to block style YAML,
// keeping the key order.
func openAPIYAML(doc *openapi3.T) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal openapi document: %w", err)
	}

	var node yaml.Node
	err = yaml.Unmarshal(raw, &node)
	if err != nil {
		return nil, fmt.Errorf("failed to convert openapi document: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err = enc.Encode(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode openapi document: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Style == yaml.DoubleQuotedStyle && n.Tag == "!!str" {
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
