package web

import (
	"context"
	"net/http"

	"github.com/willemschots/tuffyestates/internal/schema"
)

type authMode int

const (
	authNone authMode = iota
	// authOptional identifies the caller when a valid token is present.
	authOptional
	authRequired
)

const (
	contentJSON      = "application/json"
	contentMultipart = "multipart/form-data"
	contentForm      = "application/x-www-form-urlencoded"
)

var anyBody = []string{contentJSON, contentMultipart, contentForm}

// route describes a single API endpoint.
type route struct {
	method      string
	path        string
	operationID string
	tag         string
	summary     string
	auth        authMode

	pathParams   *schema.Node
	query        *schema.Node
	body         *schema.Node
	contentTypes []string

	status int
	output *schema.Node

	handler http.Handler

	// checker validates the merged path, query and body input.
	checker *schema.Checker
}

func (rt *route) pattern() string {
	return rt.method + " " + APIPrefix + rt.path
}

func (s *Server) routeTable() []*route {
	return []*route{
		{
			method:       http.MethodPost,
			path:         "/users",
			operationID:  "registerUser",
			tag:          "users",
			summary:      "Register a new user",
			body:         schema.User,
			contentTypes: anyBody,
			status:       http.StatusCreated,
			output:       schema.TokenOutput,
			handler:      s.registerHandler(),
		},
		{
			method:       http.MethodPost,
			path:         "/users/login",
			operationID:  "loginUser",
			tag:          "users",
			summary:      "Log in with email and password",
			body:         schema.Credentials,
			contentTypes: anyBody,
			status:       http.StatusOK,
			output:       schema.SessionOutput,
			handler:      s.loginHandler(),
		},
		{
			method:      http.MethodHead,
			path:        "/users/logout",
			operationID: "logoutUser",
			tag:         "users",
			summary:     "Clear the token cookies",
			status:      http.StatusOK,
			handler:     http.HandlerFunc(s.logout),
		},
		{
			method:      http.MethodGet,
			path:        "/users/status",
			operationID: "userStatus",
			tag:         "users",
			summary:     "Return the authenticated user",
			auth:        authRequired,
			status:      http.StatusOK,
			output:      schema.StatusOutput,
			handler:     s.statusHandler(),
		},
		{
			method:      http.MethodGet,
			path:        "/users/listings",
			operationID: "userListings",
			tag:         "users",
			summary:     "List the properties of a user",
			auth:        authRequired,
			query:       schema.ListingsQuery,
			status:      http.StatusOK,
			output:      schema.PropertiesOutput,
			handler:     s.listingsHandler(),
		},
		{
			method:      http.MethodGet,
			path:        "/properties",
			operationID: "listProperties",
			tag:         "properties",
			summary:     "Search properties",
			query:       schema.PropertiesQuery,
			status:      http.StatusOK,
			output:      schema.PropertiesOutput,
			handler:     s.listPropertiesHandler(),
		},
		{
			method:      http.MethodGet,
			path:        "/properties/{id}",
			operationID: "getProperty",
			tag:         "properties",
			summary:     "Get a single property",
			pathParams:  schema.IDPath,
			status:      http.StatusOK,
			output:      schema.PropertyOutput,
			handler:     s.getPropertyHandler(),
		},
		{
			method:       http.MethodPost,
			path:         "/properties",
			operationID:  "createProperty",
			tag:          "properties",
			summary:      "List a new property",
			auth:         authRequired,
			body:         schema.Property,
			contentTypes: []string{contentMultipart, contentJSON},
			status:       http.StatusCreated,
			output:       schema.CreatedOutput,
			handler:      s.createPropertyHandler(),
		},
		{
			method:       http.MethodPatch,
			path:         "/properties/{id}",
			operationID:  "updateProperty",
			tag:          "properties",
			summary:      "Change a property of the caller",
			auth:         authRequired,
			pathParams:   schema.IDPath,
			body:         schema.PropertyPatch,
			contentTypes: anyBody,
			status:       http.StatusNoContent,
			handler:      s.updatePropertyHandler(),
		},
		{
			method:      http.MethodDelete,
			path:        "/properties/{id}",
			operationID: "deleteProperty",
			tag:         "properties",
			summary:     "Remove a property of the caller",
			auth:        authRequired,
			pathParams:  schema.IDPath,
			status:      http.StatusNoContent,
			handler:     s.deletePropertyHandler(),
		},
		{
			method:       http.MethodPost,
			path:         "/offers/email",
			operationID:  "emailOffer",
			tag:          "offers",
			summary:      "Email an offer to the owner of a property",
			auth:         authOptional,
			body:         schema.Offer,
			contentTypes: anyBody,
			status:       http.StatusNoContent,
			handler:      s.offerHandler(),
		},
	}
}

// register adds the route to the mux. The descriptor is made available to
// the handler through the request context.
func (s *Server) register(rt *route) {
	rt.checker = schema.NewChecker(schema.Merge(rt.pathParams, rt.query, rt.body), schema.InRequest)
	s.routes = append(s.routes, rt)

	h := s.authenticate(rt.auth, rt.handler)

	s.mux.Handle(rt.pattern(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		}

		ctx := context.WithValue(r.Context(), routeCtxKey, rt)
		h.ServeHTTP(w, r.WithContext(ctx))
	}))
}

type ctxKey string

const (
	routeCtxKey     ctxKey = "_route"
	claimsCtxKey    ctxKey = "_claims"
	requestIDCtxKey ctxKey = "_requestID"
)

func routeFromContext(ctx context.Context) (*route, bool) {
	rt, ok := ctx.Value(routeCtxKey).(*route)
	return rt, ok
}
