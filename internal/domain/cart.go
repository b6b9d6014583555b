package domain

// CartItem is one pending-purchase entry in the user's cart. The marketplace
// enforces at most one cart entry per underlying item per user.
type CartItem struct {
	ID       int64 `json:"id"`
	Item     Item  `json:"item"`
	Quantity int   `json:"quantity"`
}
