package http

import (
	"context"
	"net/http"
	"time"

	"github.com/codexaslam/OstaEasy/internal/cart"
	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/codexaslam/OstaEasy/internal/money"
	"github.com/codexaslam/OstaEasy/internal/session"
)

// ItemLookup is the one read the cart handler needs from the shop surface,
// to reject self-purchases before any cart call goes out.
type ItemLookup interface {
	GetItem(ctx context.Context, itemID int64) (*domain.Item, error)
}

type CartHandler struct {
	runtime *Runtime
	items   ItemLookup
	timeout time.Duration
}

func NewCartHandler(runtime *Runtime, items ItemLookup, timeout time.Duration) *CartHandler {
	return &CartHandler{
		runtime: runtime,
		items:   items,
		timeout: timeout,
	}
}

type cartResponseDTO struct {
	Items   []cartItemViewDTO `json:"items"`
	Count   int               `json:"count"`
	Total   string            `json:"total"`
	Display money.DualPrice   `json:"display"`
	State   cart.State        `json:"state"`
}

type cartItemViewDTO struct {
	domain.CartItem
	Display money.DualPrice `json:"display"`
}

func (h *CartHandler) cartResponse(s *session.Session, store *cart.Store) cartResponseDTO {
	items := store.Items()
	views := make([]cartItemViewDTO, 0, len(items))
	for _, ci := range items {
		views = append(views, cartItemViewDTO{
			CartItem: ci,
			Display:  money.FormatDual(ci.Item.Price, s.Currency),
		})
	}
	total := store.Total()
	return cartResponseDTO{
		Items:   views,
		Count:   store.Count(),
		Total:   total.StringFixed(2),
		Display: money.FormatDual(total, s.Currency),
		State:   store.State(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := session.FromContext(r.Context())
	store := h.runtime.Cart(s)
	store.Fetch(ctx)
	respondJSON(w, http.StatusOK, h.cartResponse(s, store))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, err := parseItemID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	s := session.FromContext(r.Context())

	// Ownership check happens here, before the cart store is touched, so a
	// self-purchase never produces a cart mutation request.
	item, err := h.items.GetItem(ctx, itemID)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	if item.Seller.ID == s.User.ID {
		respondError(w, http.StatusBadRequest, "own_item", cart.ErrOwnItem.Error())
		return
	}

	store := h.runtime.Cart(s)
	if err := store.Add(ctx, itemID); err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartResponse(s, store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, err := parseItemID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	s := session.FromContext(r.Context())
	store := h.runtime.Cart(s)
	if err := store.Remove(ctx, itemID); err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(s, store))
}
