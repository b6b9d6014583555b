package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/codexaslam/OstaEasy/internal/checkout"
	"github.com/codexaslam/OstaEasy/internal/session"
)

type CheckoutHandler struct {
	runtime *Runtime
	timeout time.Duration
}

func NewCheckoutHandler(runtime *Runtime, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{runtime: runtime, timeout: timeout}
}

// Begin starts a checkout: requests a payment intent sized to the current
// cart and returns the client secret for the payment widget.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := session.FromContext(r.Context())
	store := h.runtime.Cart(s)
	if store.Count() == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", checkout.ErrEmptyCart.Error())
		return
	}

	orc := h.runtime.Checkout(s)
	intent, err := orc.Begin(ctx)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrCheckoutInProgress):
			respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
		case errors.Is(err, checkout.ErrSuperseded):
			respondError(w, http.StatusConflict, "checkout_cancelled", err.Error())
		default:
			handleUpstreamError(w, err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
		"amount":            intent.Amount,
		"currency":          intent.Currency,
	})
}

type completeRequestDTO struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// Complete finalizes the order after the payment widget reported success.
// A finalization failure is answered with a contact-support message, not a
// retry prompt: the payment is already captured and retrying would charge
// twice.
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req completeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentIntentID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "payment_intent_id is required")
		return
	}

	s := session.FromContext(r.Context())
	orc := h.runtime.Checkout(s)
	if err := orc.Complete(ctx, req.PaymentIntentID); err != nil {
		if errors.Is(err, checkout.ErrNoActivePayment) {
			respondError(w, http.StatusConflict, "no_active_payment", err.Error())
			return
		}
		if errors.Is(err, checkout.ErrIntentMismatch) {
			respondError(w, http.StatusConflict, "intent_mismatch", err.Error())
			return
		}
		if errors.Is(err, checkout.ErrFinalizeFailed) {
			respondError(w, http.StatusBadGateway, "finalize_failed",
				"Payment was successful but there was an issue finalizing your order. Please contact support.")
			return
		}
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":    "Your order has been placed successfully!",
		"cart_count": h.runtime.Cart(s).Count(),
	})
}

type failRequestDTO struct {
	Message string `json:"message"`
}

// Fail records a provider-side outcome (declined, cancelled in the widget,
// provider error). Cart and order state are untouched; the flow resets so the
// user can retry.
func (h *CheckoutHandler) Fail(w http.ResponseWriter, r *http.Request) {
	var req failRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := session.FromContext(r.Context())
	h.runtime.Checkout(s).Fail(req.Message)
	respondJSON(w, http.StatusOK, map[string]string{"message": "payment attempt recorded as failed"})
}

// Cancel aborts the current checkout attempt.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	h.runtime.Checkout(s).Cancel()
	respondJSON(w, http.StatusOK, map[string]string{"message": "checkout cancelled"})
}

// Status exposes the orchestrator's state for the UI.
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"state": h.runtime.Checkout(s).State(),
	})
}
