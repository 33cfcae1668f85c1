package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/schema"

	"github.com/willemschots/tuffyestates/internal/auth"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/offer"
	"github.com/willemschots/tuffyestates/internal/property"
)

// APIPrefix is the path prefix of every API route.
const APIPrefix = "/api/v1"

// AuthService registers and authenticates users.
type AuthService interface {
	Register(ctx context.Context, c auth.Credentials) (auth.Token, error)
	Login(ctx context.Context, c auth.Credentials) (auth.Session, error)
	User(ctx context.Context, id string) (auth.User, error)
	Authenticate(raw string) (auth.Claims, error)
}

// PropertyService manages property listings.
type PropertyService interface {
	Create(ctx context.Context, d property.Draft) (string, error)
	List(ctx context.Context, q property.Query) ([]property.Property, error)
	ListByOwner(ctx context.Context, owner string, offset, limit int) ([]property.Property, error)
	Get(ctx context.Context, id string) (property.Property, error)
	Update(ctx context.Context, patch property.Patch) error
	Delete(ctx context.Context, id, owner string) error
}

// OfferService forwards offers to owners.
type OfferService interface {
	Submit(ctx context.Context, o offer.Offer, sender *auth.User) error
}

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger          *slog.Logger
	AuthService     AuthService
	PropertyService PropertyService
	OfferService    OfferService
	StaticFS        http.FileSystem
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	SecureCookie bool
	// AllowedOrigins are reflected when empty.
	AllowedOrigins []string
	MaxUploadBytes int64
}

type Server struct {
	deps    *ServerDeps
	cfg     ServerConfig
	mux     *http.ServeMux
	decoder *schema.Decoder
	routes  []*route
	doc     *openapi3.T
	handler http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}

	decoder := schema.NewDecoder()
	decoder.SetAliasTag("json")

	s := &Server{
		deps:    deps,
		cfg:     cfg,
		mux:     http.NewServeMux(),
		decoder: decoder,
	}

	// API endpoints are described by the route table, the descriptors are
	// used for authentication, input validation and the OpenAPI document.
	for _, rt := range s.routeTable() {
		s.register(rt)
	}

	s.doc = s.openAPIDoc()
	s.mux.Handle("GET "+APIPrefix+"/openapi.json", http.HandlerFunc(s.serveOpenAPIJSON))
	s.mux.Handle("GET "+APIPrefix+"/openapi.yaml", http.HandlerFunc(s.serveOpenAPIYAML))

	if deps.StaticFS != nil {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(filesOnly{fs: deps.StaticFS})))
	}

	// Wrap the mux with global middlewares, first one is outermost.
	middlewares := []func(http.Handler) http.Handler{
		s.cors(),
		s.requestLog,
		s.recoverPanic,
	}
	s.handler = s.mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		s.handler = middlewares[i](s.handler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type errorOutput struct {
	Error string `json:"error"`
}

// handleError translates err into a status code and writes it as a JSON
// error body. Unexpected errors are logged and never shown to the client.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)

	msg := http.StatusText(status)
	var (
		pub errorz.Public
		inv errorz.InvalidInput
	)
	switch {
	case status == http.StatusInternalServerError:
		s.deps.Logger.Error("internal server error",
			"requestId", requestIDFromContext(r.Context()),
			"method", r.Method,
			"url", r.URL.String(),
			"error", err,
		)
		msg = "Internal server error"
	case errors.As(err, &pub):
		msg = pub.Msg
	case errors.As(err, &inv):
		msg = inv.Error()
	}

	writeJSON(w, r, status, errorOutput{Error: msg})
}

func errorStatus(err error) int {
	var inv errorz.InvalidInput
	switch {
	case errors.As(err, &inv),
		errors.Is(err, errorz.ErrBadRequest),
		errors.Is(err, errorz.ErrConstraintViolated),
		errors.Is(err, auth.ErrWrongPassword):
		return http.StatusBadRequest
	case errors.Is(err, errorz.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errorz.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errorz.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v with the given status. HEAD requests get no body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if r.Method == http.MethodHead || status == http.StatusNoContent {
		return
	}

	// The status is already written, the client gets a truncated body if this fails.
	_ = json.NewEncoder(w).Encode(v)
}
