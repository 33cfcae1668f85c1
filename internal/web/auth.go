package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/willemschots/tuffyestates/internal/auth"
	"github.com/willemschots/tuffyestates/internal/errorz"
)

const (
	tokenCookieName    = "token"
	hasTokenCookieName = "has-token"
)

// authenticate wraps handler with the bearer token check of the given mode.
func (s *Server) authenticate(mode authMode, handler http.Handler) http.Handler {
	if mode == authNone {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)

		claims, err := s.deps.AuthService.Authenticate(raw)
		if err != nil {
			if mode == authRequired {
				s.handleError(w, r, errorz.NewPublic("Unauthorized", errorz.ErrUnauthorized))
				return
			}

			// Anonymous callers are fine, stale cookies are ignored.
			handler.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
		handler.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads the token from the Authorization header, falling back
// to the token cookie.
func bearerToken(r *http.Request) string {
	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(value)
	}

	c, err := r.Cookie(tokenCookieName)
	if err != nil {
		return ""
	}

	return c.Value
}

// ClaimsFromContext returns the claims of the authenticated caller.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(auth.Claims)
	return claims, ok
}

// callerID returns the ID of the authenticated caller or fails with
// errorz.ErrUnauthorized.
func callerID(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", errorz.NewPublic("Unauthorized", errorz.ErrUnauthorized)
	}

	return claims.UserID, nil
}

// setTokenCookies mirrors the token in cookies for browser clients.
func (s *Server) setTokenCookies(w http.ResponseWriter, tok auth.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	// has-token is readable by scripts, the token itself is not.
	http.SetCookie(w, &http.Cookie{
		Name:     hasTokenCookieName,
		Value:    "true",
		Path:     "/",
		Expires:  tok.ExpiresAt,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{tokenCookieName, hasTokenCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: name == tokenCookieName,
			Secure:   s.cfg.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}

	w.WriteHeader(http.StatusOK)
}
