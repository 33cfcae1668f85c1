package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
)

const requestIDHeader = "X-Request-ID"

// cors allows cross origin requests with credentials. Without configured
// origins, the origin of the request is reflected.
func (s *Server) cors() func(http.Handler) http.Handler {
	opts := []handlers.CORSOption{
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	}

	if len(s.cfg.AllowedOrigins) > 0 {
		opts = append(opts, handlers.AllowedOrigins(s.cfg.AllowedOrigins))
	} else {
		opts = append(opts, handlers.AllowedOriginValidator(func(string) bool { return true }))
	}

	return handlers.CORS(opts...)
}

// statusRecorder remembers the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestLog assigns every request an ID and logs it once it completes.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDCtxKey, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		s.deps.Logger.Info("request",
			"requestId", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// recoverPanic turns panics in handlers into internal server errors.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			if v == http.ErrAbortHandler {
				panic(v)
			}

			s.handleError(w, r, fmt.Errorf("panic: %v", v))
		}()

		next.ServeHTTP(w, r)
	})
}
