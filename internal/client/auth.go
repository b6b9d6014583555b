package client

import (
	"context"
	"net/http"

	"github.com/codexaslam/OstaEasy/internal/domain"
)

// Login exchanges credentials for a bearer token. The token is opaque to the
// gateway; it is attached verbatim to every authenticated request.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	in := map[string]string{
		"username": username,
		"password": password,
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/token", "", in, &out); err != nil {
		return "", err
	}
	return out.Access, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Signup forwards a registration payload untouched; validation happens
// upstream.
func (c *Client) Signup(ctx context.Context, payload map[string]any) error {
	return c.do(ctx, http.MethodPost, "/api/users/signup", "", payload, nil)
}
