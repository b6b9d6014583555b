package session

import (
	"context"
	"errors"
	"time"

	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Session binds a browser to a marketplace bearer token and the profile it
// belongs to. The token itself stays opaque; the gateway only carries it.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      domain.User `json:"user"`
	Currency  string      `json:"currency"`
	ExpiresAt time.Time   `json:"expires_at"`
}

var ErrNotFound = errors.New("session not found")

// Store keeps live sessions keyed by session id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// TokenTTL derives a session lifetime from the bearer token's exp claim when
// the token happens to be a JWT. The signature is not verified; the
// marketplace does that. We only avoid keeping sessions alive past their
// token. Non-JWT tokens get the fallback.
func TokenTTL(token string, now time.Time, fallback time.Duration) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	ttl := exp.Time.Sub(now)
	if ttl <= 0 {
		return fallback
	}
	return ttl
}
