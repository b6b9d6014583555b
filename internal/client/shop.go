package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/shopspring/decimal"
)

// ItemQuery narrows an item listing. Zero values are omitted from the request.
type ItemQuery struct {
	Category string
	Search   string
	Ordering string
	Section  string // "featured" or "bestsellers"
	Page     int
}

func (q ItemQuery) encode() string {
	values := url.Values{}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Ordering != "" {
		values.Set("ordering", q.Ordering)
	}
	if q.Section != "" {
		values.Set("section", q.Section)
	}
	if q.Page > 1 {
		values.Set("page", fmt.Sprint(q.Page))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) ListItems(ctx context.Context, q ItemQuery) ([]domain.Item, error) {
	return getList[domain.Item](ctx, c, "/api/shop/items/"+q.encode(), "")
}

func (c *Client) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	var item domain.Item
	path := fmt.Sprintf("/api/shop/items/%d/", itemID)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

type ItemRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
}

func (c *Client) CreateItem(ctx context.Context, token string, req ItemRequest) (*domain.Item, error) {
	var item domain.Item
	if err := c.do(ctx, http.MethodPost, "/api/shop/items/create/", token, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateItem(ctx context.Context, token string, itemID int64, req ItemRequest) (*domain.Item, error) {
	var item domain.Item
	path := fmt.Sprintf("/api/shop/items/%d/update/", itemID)
	if err := c.do(ctx, http.MethodPut, path, token, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// MyItems returns the caller's listings bucketed by status, plus the items
// they have purchased.
func (c *Client) MyItems(ctx context.Context, token string) (*domain.MyItems, error) {
	var out domain.MyItems
	if err := c.do(ctx, http.MethodGet, "/api/shop/my-items/", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Purchases(ctx context.Context, token string) ([]domain.Purchase, error) {
	return getList[domain.Purchase](ctx, c, "/api/shop/purchases/", token)
}
