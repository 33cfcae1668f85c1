package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"slices"

	"github.com/gorilla/schema"

	"github.com/willemschots/tuffyestates/internal/errorz"
	tschema "github.com/willemschots/tuffyestates/internal/schema"
)

// mapper is a generic HTTP handler that maps requests to target
// function calls and writes the output to the response.
type mapper[IN, OUT any] struct {
	s      *Server
	req    func(*http.Request) (IN, error)
	target func(context.Context, IN) (OUT, error)
	res    func(result[IN, OUT]) error
}

// result is the result of a succesful request.
// it contains all relevant data because we can't know
// in advance what we will need to construct a response.
type result[IN, OUT any] struct {
	s   *Server
	r   *http.Request
	w   http.ResponseWriter
	in  IN
	out OUT
}

// mapBoth creates a HTTP Handler that:
// 1. Maps the request to a value of input type IN.
// 2. Calls the target func with that value.
// 3. Writes the output of type OUT to the response with the route status.
//
// Errors are written using the server error handler.
func mapBoth[IN, OUT any](s *Server, targetFunc func(context.Context, IN) (OUT, error)) *mapper[IN, OUT] {
	return &mapper[IN, OUT]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return defaultRequest[IN](s, r)
		},
		target: targetFunc,
		res: func(r result[IN, OUT]) error {
			return defaultResponse(r)
		},
	}
}

// mapRequest creates a HTTP Handler that:
// 1. Maps the request to a value of type IN.
// 2. Calls the target func with that value.
// 3. Writes the route status without a body if target func was successful.
//
// Errors are written using the server error handler.
func mapRequest[IN any](s *Server, targetFunc func(context.Context, IN) error) *mapper[IN, struct{}] {
	return &mapper[IN, struct{}]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return defaultRequest[IN](s, r)
		},
		target: func(ctx context.Context, in IN) (struct{}, error) {
			return struct{}{}, targetFunc(ctx, in)
		},
		res: func(r result[IN, struct{}]) error {
			r.w.WriteHeader(routeStatus(r.r))
			return nil
		},
	}
}

// mapResponse creates a HTTP Handler that:
// 1. Calls the target func.
// 2. Maps the returned value of type OUT to the response with the route status.
//
// Errors are written using the server error handler.
func mapResponse[OUT any](s *Server, targetFunc func(context.Context) (OUT, error)) *mapper[struct{}, OUT] {
	return &mapper[struct{}, OUT]{
		s: s,
		req: func(r *http.Request) (struct{}, error) {
			return struct{}{}, nil
		},
		target: func(ctx context.Context, _ struct{}) (OUT, error) {
			return targetFunc(ctx)
		},
		res: func(r result[struct{}, OUT]) error {
			return defaultResponse(r)
		},
	}
}

// response overwrites the function that writes the output to the response.
func (e *mapper[IN, OUT]) response(fn func(result[IN, OUT]) error) *mapper[IN, OUT] {
	e.res = fn
	return e
}

func (e *mapper[IN, OUT]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	in, err := e.req(r)
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}

	out, err := e.target(r.Context(), in)
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}

	result := result[IN, OUT]{
		s:   e.s,
		r:   r,
		w:   w,
		in:  in,
		out: out,
	}

	err = e.res(result)
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}
}

// fileReceiver is implemented by inputs that accept uploaded files.
type fileReceiver interface {
	receiveFile(name string, data []byte)
}

// defaultRequest is the default way to map a request to a struct.
//
// The body is decoded first, then query and path values. The result is
// validated against the request schema of the route.
func defaultRequest[IN any](s *Server, r *http.Request) (IN, error) {
	var in IN

	rt, ok := routeFromContext(r.Context())
	if !ok {
		return in, errors.New("no route in request context")
	}

	values := url.Values{}

	if rt.body != nil {
		form, err := s.decodeBody(r, rt, &in)
		if err != nil {
			return in, err
		}
		for k, v := range form {
			values[k] = v
		}
	}

	if rt.query != nil {
		for k, v := range r.URL.Query() {
			values[k] = v
		}
	}

	if rt.pathParams != nil {
		for _, p := range rt.pathParams.Props {
			values.Set(p.Name, r.PathValue(p.Name))
		}
	}

	if len(values) > 0 {
		err := s.decoder.Decode(&in, values)
		if err != nil {
			return in, decodeError(err)
		}
	}

	return in, rt.checker.Check(in)
}

// decodeBody decodes JSON bodies into in and returns the values of form
// bodies. Uploaded files of binary properties are handed to in.
func (s *Server) decodeBody(r *http.Request, rt *route, in any) (url.Values, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !slices.Contains(rt.contentTypes, ct) {
		return nil, errorz.NewPublic("Unsupported content type", errorz.ErrBadRequest)
	}

	switch ct {
	case contentJSON:
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		err := dec.Decode(in)
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, bodyError(err)
		}
		return nil, nil

	case contentMultipart:
		err := r.ParseMultipartForm(s.cfg.MaxUploadBytes)
		if err != nil {
			return nil, bodyError(err)
		}

		err = receiveFiles(r, rt.body, in)
		if err != nil {
			return nil, err
		}

		return url.Values(r.MultipartForm.Value), nil

	default:
		err := r.ParseForm()
		if err != nil {
			return nil, bodyError(err)
		}
		return r.PostForm, nil
	}
}

func receiveFiles(r *http.Request, body *tschema.Node, in any) error {
	fr, ok := in.(fileReceiver)
	if !ok {
		return nil
	}

	for _, p := range body.Props {
		if p.Node.Kind != tschema.KindBinary {
			continue
		}

		headers := r.MultipartForm.File[p.Name]
		if len(headers) == 0 {
			continue
		}

		f, err := headers[0].Open()
		if err != nil {
			return fmt.Errorf("failed to open uploaded %s: %w", p.Name, err)
		}

		data, err := io.ReadAll(f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("failed to read uploaded %s: %w", p.Name, err)
		}
		if closeErr != nil {
			return closeErr
		}

		fr.receiveFile(p.Name, data)
	}

	return nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errorz.NewPublic("Request body too large", errorz.ErrBadRequest)
	}

	return errorz.InvalidInput{errorz.Keyed{Key: "body", Err: err}}
}

func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for key, e := range multiErr {
			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: e,
			})
		}

		return invalidInput
	}

	return err
}

// defaultResponse writes the output as JSON with the route status.
func defaultResponse[IN, OUT any](r result[IN, OUT]) error {
	writeJSON(r.w, r.r, routeStatus(r.r), r.out)
	return nil
}

func routeStatus(r *http.Request) int {
	rt, ok := routeFromContext(r.Context())
	if !ok || rt.status == 0 {
		return http.StatusOK
	}
	return rt.status
}
