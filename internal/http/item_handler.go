package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/codexaslam/OstaEasy/internal/client"
	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/codexaslam/OstaEasy/internal/money"
	"github.com/codexaslam/OstaEasy/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ShopAPI is the browsing/listing slice of the marketplace contract.
type ShopAPI interface {
	ListItems(ctx context.Context, q client.ItemQuery) ([]domain.Item, error)
	GetItem(ctx context.Context, itemID int64) (*domain.Item, error)
	CreateItem(ctx context.Context, token string, req client.ItemRequest) (*domain.Item, error)
	UpdateItem(ctx context.Context, token string, itemID int64, req client.ItemRequest) (*domain.Item, error)
	MyItems(ctx context.Context, token string) (*domain.MyItems, error)
	Purchases(ctx context.Context, token string) ([]domain.Purchase, error)
}

type ItemHandler struct {
	api     ShopAPI
	timeout time.Duration
}

func NewItemHandler(api ShopAPI, timeout time.Duration) *ItemHandler {
	return &ItemHandler{api: api, timeout: timeout}
}

type itemViewDTO struct {
	domain.Item
	Display money.DualPrice `json:"display"`
}

func itemView(item domain.Item, currency string) itemViewDTO {
	return itemViewDTO{Item: item, Display: money.FormatDual(item.Price, currency)}
}

// displayCurrency is the session's selected currency, EUR for guests.
func displayCurrency(ctx context.Context) string {
	if s := session.FromContext(ctx); s != nil && s.Currency != "" {
		return s.Currency
	}
	return "EUR"
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	items, err := h.api.ListItems(ctx, client.ItemQuery{
		Category: query.Get("category"),
		Search:   query.Get("search"),
		Ordering: query.Get("ordering"),
		Section:  query.Get("section"),
		Page:     page,
	})
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	currency := displayCurrency(r.Context())
	views := make([]itemViewDTO, 0, len(items))
	for _, item := range items {
		views = append(views, itemView(item, currency))
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": views, "count": len(views)})
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, err := parseItemID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	item, err := h.api.GetItem(ctx, itemID)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, itemView(*item, displayCurrency(r.Context())))
}

type itemRequestDTO struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

func (dto itemRequestDTO) validate() string {
	if dto.Title == "" {
		return "title is required"
	}
	if dto.Price.LessThanOrEqual(decimal.Zero) {
		return "price must be positive"
	}
	for _, c := range domain.Categories {
		if dto.Category == c {
			return ""
		}
	}
	return "unknown category"
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var dto itemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if msg := dto.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	s := session.FromContext(r.Context())
	item, err := h.api.CreateItem(ctx, s.Token, client.ItemRequest{
		Title:       dto.Title,
		Description: dto.Description,
		Price:       dto.Price,
		Category:    dto.Category,
		ImageURL:    dto.ImageURL,
	})
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, itemView(*item, s.Currency))
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, err := parseItemID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	var dto itemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if msg := dto.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	s := session.FromContext(r.Context())
	item, err := h.api.UpdateItem(ctx, s.Token, itemID, client.ItemRequest{
		Title:       dto.Title,
		Description: dto.Description,
		Price:       dto.Price,
		Category:    dto.Category,
		ImageURL:    dto.ImageURL,
	})
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, itemView(*item, s.Currency))
}

func (h *ItemHandler) MyItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := session.FromContext(r.Context())
	mine, err := h.api.MyItems(ctx, s.Token)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mine)
}

func (h *ItemHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := session.FromContext(r.Context())
	purchases, err := h.api.Purchases(ctx, s.Token)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"purchases": purchases, "count": len(purchases)})
}

func parseItemID(r *http.Request) (int64, error) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		return 0, strconv.ErrSyntax
	}
	return itemID, nil
}
