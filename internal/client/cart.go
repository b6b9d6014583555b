package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/codexaslam/OstaEasy/internal/domain"
)

func (c *Client) GetCart(ctx context.Context, token string) ([]domain.CartItem, error) {
	return getList[domain.CartItem](ctx, c, "/api/shop/cart/", token)
}

func (c *Client) AddCartItem(ctx context.Context, token string, itemID int64, quantity int) error {
	path := fmt.Sprintf("/api/shop/cart/add/%d/", itemID)
	in := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPost, path, token, in, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, token string, itemID int64) error {
	path := fmt.Sprintf("/api/shop/cart/remove/%d/", itemID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// CreatePaymentIntent asks the payment backend (fronted by the marketplace
// API) for an authorization handle. Amount is in integer minor units and
// currency is the lower-cased code the payment backend expects.
func (c *Client) CreatePaymentIntent(ctx context.Context, token string, amount int64, currency string) (*domain.PaymentIntent, error) {
	in := map[string]any{
		"amount":   amount,
		"currency": currency,
	}
	var intent domain.PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/api/shop/create-payment-intent/", token, in, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// PayCart finalizes the order after the payment provider confirmed the
// payment. The server converts the cart into purchase records and empties it.
func (c *Client) PayCart(ctx context.Context, token, paymentIntentID string) error {
	in := map[string]string{"payment_intent_id": paymentIntentID}
	return c.do(ctx, http.MethodPost, "/api/shop/cart/pay/", token, in, nil)
}
