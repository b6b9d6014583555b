package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/codexaslam/OstaEasy/internal/cart"
	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/codexaslam/OstaEasy/internal/money"
	"github.com/google/uuid"
)

// PaymentAPI is the slice of the marketplace contract the checkout flow needs.
type PaymentAPI interface {
	CreatePaymentIntent(ctx context.Context, token string, amount int64, currency string) (*domain.PaymentIntent, error)
	PayCart(ctx context.Context, token, paymentIntentID string) error
}

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrNoActivePayment    = errors.New("no payment awaiting confirmation")
	ErrSuperseded         = errors.New("checkout attempt was cancelled")
	ErrIntentMismatch     = errors.New("payment intent does not match the active checkout")

	// ErrFinalizeFailed means the provider captured the payment but the order
	// was not recorded. Retrying would charge the user twice, so callers must
	// surface a contact-support message, never a retry prompt.
	ErrFinalizeFailed = errors.New("payment captured but order finalization failed")
)

// Orchestrator drives one session's payment flow:
//
//	Idle -> RequestingIntent -> AwaitingConfirmation -> Finalizing -> Idle
//
// The cart is cleared only after the server confirms the order. The payment
// UI itself is an external collaborator (the provider's browser widget); the
// orchestrator hands it a client secret and receives its outcome.
type Orchestrator struct {
	api      PaymentAPI
	cart     *cart.Store
	token    string
	currency string

	mu      sync.Mutex
	state   State
	attempt string
	intent  *domain.PaymentIntent
}

func NewOrchestrator(api PaymentAPI, cartStore *cart.Store, token, currency string) *Orchestrator {
	return &Orchestrator{
		api:      api,
		cart:     cartStore,
		token:    token,
		currency: currency,
		state:    StateIdle,
	}
}

// Begin requests a payment intent sized to the cart total at this instant.
// On success the flow moves to AwaitingConfirmation and the intent (with its
// client secret) is handed back for the payment widget. On failure the flow
// returns to Idle and the error propagates so dependent UI can reset.
//
// Begin does not defend against an empty cart; the checkout control is
// disabled upstream when there is nothing to pay for.
func (o *Orchestrator) Begin(ctx context.Context) (*domain.PaymentIntent, error) {
	o.mu.Lock()
	if !CanTransition(o.state, StateRequestingIntent) {
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	attempt := uuid.NewString()
	o.attempt = attempt
	o.state = StateRequestingIntent

	total := o.cart.Total()
	amount := money.MinorUnits(total)
	currency := strings.ToLower(o.currency)
	o.mu.Unlock()

	intent, err := o.api.CreatePaymentIntent(ctx, o.token, amount, currency)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attempt != attempt {
		// Cancelled while the request was in flight. The late response is
		// discarded, not applied.
		log.Printf("checkout attempt %s superseded, discarding intent response", attempt)
		return nil, ErrSuperseded
	}
	if err != nil {
		o.state = StateIdle
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	o.state = StateAwaitingConfirmation
	o.intent = intent
	return intent, nil
}

// Cancel aborts the current attempt and returns to Idle. A response from an
// in-flight intent request will find the attempt id changed and be ignored.
// Finalizing cannot be cancelled: at that point the payment is captured.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateFinalizing {
		return
	}
	o.attempt = uuid.NewString()
	o.state = StateIdle
	o.intent = nil
}

// Fail records a provider-side failure (declined, user cancel, provider
// error). The cart is untouched and the flow returns to Idle so the user can
// retry.
func (o *Orchestrator) Fail(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateAwaitingConfirmation {
		return
	}
	log.Printf("payment confirmation failed: %s", reason)
	o.state = StateIdle
	o.intent = nil
}

// Complete relays a confirmed payment to the order API. The id must belong to
// the intent this flow created; anything else is rejected before the order API
// is touched, and the active flow stays confirmable. Only on the server's
// acknowledgement is the cart cleared. A failure here is the one post-capture
// hole in the flow: money moved but no order exists, so the distinct
// ErrFinalizeFailed comes back and the flow must not be retried.
func (o *Orchestrator) Complete(ctx context.Context, paymentIntentID string) error {
	o.mu.Lock()
	if o.state != StateAwaitingConfirmation {
		o.mu.Unlock()
		return ErrNoActivePayment
	}
	if o.intent == nil || o.intent.ID != paymentIntentID {
		o.mu.Unlock()
		return ErrIntentMismatch
	}
	o.state = StateFinalizing
	o.mu.Unlock()

	err := o.api.PayCart(ctx, o.token, paymentIntentID)

	o.mu.Lock()
	o.state = StateIdle
	o.intent = nil
	o.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrFinalizeFailed, err)
	}

	o.cart.Clear()
	return nil
}

// Currency is the primary currency this flow charges in.
func (o *Orchestrator) Currency() string {
	return o.currency
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Intent returns the live payment intent, or nil outside an active flow.
func (o *Orchestrator) Intent() *domain.PaymentIntent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.intent
}
