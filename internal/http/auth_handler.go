package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/codexaslam/OstaEasy/internal/money"
	"github.com/codexaslam/OstaEasy/internal/session"
	"github.com/google/uuid"
)

// AuthAPI is the auth slice of the marketplace contract.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, token string) (*domain.User, error)
	Signup(ctx context.Context, payload map[string]any) error
}

type AuthHandler struct {
	api        AuthAPI
	sessions   session.Store
	runtime    *Runtime
	timeout    time.Duration
	defaultTTL time.Duration
	secure     bool
}

func NewAuthHandler(api AuthAPI, sessions session.Store, runtime *Runtime, timeout, defaultTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		api:        api,
		sessions:   sessions,
		runtime:    runtime,
		timeout:    timeout,
		defaultTTL: defaultTTL,
		secure:     secureCookies,
	}
}

type loginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	token, err := h.api.Login(ctx, req.Username, req.Password)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	user, err := h.api.Profile(ctx, token)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	now := time.Now()
	ttl := session.TokenTTL(token, now, h.defaultTTL)
	s := &session.Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      *user,
		Currency:  "EUR",
		ExpiresAt: now.Add(ttl),
	}
	if err := h.sessions.Put(ctx, s, ttl); err != nil {
		log.Printf("session create error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not create session")
		return
	}

	http.SetCookie(w, h.sessionCookie(s.ID, ttl))
	respondJSON(w, http.StatusOK, map[string]any{
		"user":     user,
		"currency": s.Currency,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := session.FromContext(r.Context())
	if err := h.sessions.Delete(ctx, s.ID); err != nil {
		log.Printf("session delete error: %v", err)
	}
	h.runtime.Drop(s.ID)

	http.SetCookie(w, h.sessionCookie("", -time.Hour))
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.api.Signup(ctx, payload); err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"user":     s.User,
		"currency": s.Currency,
	})
}

type currencyRequestDTO struct {
	Currency string `json:"currency"`
}

// SetCurrency switches the session's primary display/charge currency.
func (h *AuthHandler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req currencyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !money.Supported(req.Currency) {
		respondError(w, http.StatusBadRequest, "invalid_currency", "currency must be EUR or USD")
		return
	}

	s := session.FromContext(r.Context())
	s.Currency = req.Currency
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		respondError(w, http.StatusUnauthorized, "session_expired", "session has expired")
		return
	}
	if err := h.sessions.Put(ctx, s, ttl); err != nil {
		log.Printf("session update error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"currency": s.Currency})
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
