package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to the external marketplace API over HTTP. All persistence and
// business logic (pricing, inventory, payment capture) live behind it; the
// gateway never holds authoritative state of its own.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[httpResult]
}

type httpResult struct {
	status int
	body   []byte
}

func New(baseURL string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
		Name:        "marketplace-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: cb,
	}
}

// APIError is a non-2xx response from the marketplace API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace api: %d: %s", e.StatusCode, e.Message)
}

// StatusOf returns the upstream HTTP status carried by err, or 0 when err is
// not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// do executes one round trip through the circuit breaker. Network failures and
// 5xx responses count against the breaker; 4xx responses are the upstream
// doing its job and do not.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var payload io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	result, err := c.breaker.Execute(func() (httpResult, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return httpResult{}, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return httpResult{}, fmt.Errorf("read response body: %w", err)
		}

		res := httpResult{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return res, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
		}
		return res, nil
	})
	if err != nil {
		return err
	}

	if result.status < http.StatusOK || result.status >= http.StatusMultipleChoices {
		return &APIError{StatusCode: result.status, Message: errorMessage(result.body)}
	}

	if out != nil && len(result.body) > 0 {
		if err := json.Unmarshal(result.body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorMessage pulls a human message out of an error body. The marketplace
// uses {"error": ...}; its auth layer uses {"detail": ...}.
func errorMessage(body []byte) string {
	var parsed struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	if len(body) == 0 {
		return "empty error response"
	}
	return string(body)
}

// decodeList handles both response shapes the marketplace emits for
// collections: a paginated {"results": [...]} envelope and a bare array.
func decodeList[T any](body []byte) ([]T, error) {
	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results, nil
	}

	var list []T
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return list, nil
}

// getList is do for collection endpoints, tolerating both pagination shapes.
func getList[T any](ctx context.Context, c *Client, path, token string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}
