package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/codexaslam/OstaEasy/internal/client"
	"github.com/sony/gobreaker/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleUpstreamError converts marketplace API failures to storefront
// responses. Upstream 4xx messages pass through verbatim: they are the
// user-facing explanation (declined card, item already in cart, ...).
func handleUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "marketplace temporarily unavailable")
		return
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		respondError(w, http.StatusBadGateway, "upstream_error", "marketplace request failed")
		return
	}

	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		respondError(w, http.StatusBadRequest, "invalid_request", apiErr.Message)
	case http.StatusUnauthorized:
		respondError(w, http.StatusUnauthorized, "unauthenticated", apiErr.Message)
	case http.StatusForbidden:
		respondError(w, http.StatusForbidden, "permission_denied", apiErr.Message)
	case http.StatusNotFound:
		respondError(w, http.StatusNotFound, "not_found", apiErr.Message)
	case http.StatusConflict:
		respondError(w, http.StatusConflict, "conflict", apiErr.Message)
	case http.StatusTooManyRequests:
		respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", apiErr.Message)
	default:
		respondError(w, http.StatusBadGateway, "upstream_error", apiErr.Message)
	}
}
