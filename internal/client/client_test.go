package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/users/token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "secret", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]string{"access": "tok-123"})
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)
	token, err := c.Login(context.Background(), "alice", "secret")

	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestGetCart_PaginatedAndBareShapes(t *testing.T) {
	paginated := `{"count":1,"results":[{"id":1,"item":{"id":11,"title":"Coat","price":"19.99"},"quantity":1}]}`
	bare := `[{"id":1,"item":{"id":11,"title":"Coat","price":"19.99"},"quantity":1}]`

	for name, payload := range map[string]string{"paginated": paginated, "bare": bare} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/shop/cart/", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(payload))
			}))
			defer server.Close()

			c := New(server.URL, 5*time.Second)
			items, err := c.GetCart(context.Background(), "tok")

			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Coat", items[0].Item.Title)
			assert.True(t, items[0].Item.Price.Equal(decimal.RequireFromString("19.99")))
		})
	}
}

func TestAddCartItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/shop/cart/add/7/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1, body["quantity"])

		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Item added to cart successfully"})
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)
	err := c.AddCartItem(context.Background(), "tok", 7, 1)
	require.NoError(t, err)
}

func TestRemoveCartItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/api/shop/cart/remove/7/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)
	require.NoError(t, c.RemoveCartItem(context.Background(), "tok", 7))
}

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shop/create-payment-intent/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(2499), body["amount"])
		assert.Equal(t, "eur", body["currency"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "pi_123",
			"client_secret": "pi_123_secret",
			"amount":        2499,
			"currency":      "eur",
		})
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)
	intent, err := c.CreatePaymentIntent(context.Background(), "tok", 2499, "eur")

	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
}

func TestPayCart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shop/cart/pay/", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pi_123", body["payment_intent_id"])

		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)
	require.NoError(t, c.PayCart(context.Background(), "tok", "pi_123"))
}

func TestListItems_QueryPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shop/items/", r.URL.Path)
		assert.Equal(t, "bags", r.URL.Query().Get("category"))
		assert.Equal(t, "leather", r.URL.Query().Get("search"))
		assert.Equal(t, "featured", r.URL.Query().Get("section"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)
	items, err := c.ListItems(context.Background(), ItemQuery{
		Category: "bags",
		Search:   "leather",
		Section:  "featured",
	})

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAPIError_MessagePassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "You cannot add your own item to cart"})
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)
	err := c.AddCartItem(context.Background(), "tok", 7, 1)

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "You cannot add your own item to cart", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestBreaker_OpensAfterConsecutiveServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)

	// ReadyToTrip fires after more than five consecutive failures.
	for i := 0; i < 6; i++ {
		err := c.PayCart(context.Background(), "tok", "pi_1")
		require.Error(t, err)
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState), "call %d should reach upstream", i)
	}

	err := c.PayCart(context.Background(), "tok", "pi_1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Item not in cart"})
	}))
	defer server.Close()

	c := New(server.URL, 5*time.Second)

	for i := 0; i < 10; i++ {
		err := c.RemoveCartItem(context.Background(), "tok", 7)
		require.Error(t, err)
		require.False(t, errors.Is(err, gobreaker.ErrOpenState), "4xx responses must not trip the breaker")
		assert.Equal(t, http.StatusNotFound, StatusOf(err))
	}
}
