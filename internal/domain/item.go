package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemStatusOnSale ItemStatus = "on_sale"
	ItemStatusSold   ItemStatus = "sold"
)

// Categories the marketplace accepts for a listing.
var Categories = []string{"clothing", "accessories", "bags", "shoes", "sunglasses"}

type Seller struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Item struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Seller      Seller          `json:"seller"`
	Status      ItemStatus      `json:"status"`
	DateAdded   time.Time       `json:"date_added"`
}

// MyItems buckets a seller's listings the way the marketplace reports them.
type MyItems struct {
	OnSale    []Item `json:"on_sale"`
	Sold      []Item `json:"sold"`
	Purchased []Item `json:"purchased"`
}
