package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// CookieName carries the session id in the browser.
const CookieName = "osta_session"

type contextKey struct{}

// Gate is the access-control check in front of every cart/checkout action.
// Unauthenticated requests are answered with a login redirect payload and the
// guarded handler is never invoked, so no downstream call is made.
type Gate struct {
	store    Store
	loginURL string
}

func NewGate(store Store, loginURL string) *Gate {
	return &Gate{store: store, loginURL: loginURL}
}

// Authenticate resolves the session cookie, if any, and attaches the session
// to the request context. Requests without a valid session pass through
// unauthenticated; Require decides what is gated.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		s, err := g.store.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Printf("session lookup error: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require blocks unauthenticated requests with 401 and a pointer at the login
// route.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(map[string]string{
				"error":     "Please login to continue",
				"code":      "login_required",
				"login_url": g.loginURL,
			}); err != nil {
				log.Printf("failed to encode response: %v", err)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the authenticated session, or nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return nil
}

// NewContext is the test-side counterpart of Authenticate.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}
