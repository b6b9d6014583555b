package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntent is the payment backend's authorization handle for a single
// checkout attempt. It is never persisted beyond the flow that created it.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Purchase struct {
	ID              int64           `json:"id"`
	Item            Item            `json:"item"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	PaymentIntentID string          `json:"payment_intent_id"`
}
