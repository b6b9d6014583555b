package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// API is the slice of the marketplace contract the cart store needs.
type API interface {
	GetCart(ctx context.Context, token string) ([]domain.CartItem, error)
	AddCartItem(ctx context.Context, token string, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, token string, itemID int64) error
}

type State string

const (
	StateEmpty     State = "EMPTY"
	StateLoading   State = "LOADING"
	StatePopulated State = "POPULATED"
)

// ErrOwnItem rejects a self-purchase. The check belongs to the caller (it
// needs the item's seller), but the sentinel lives here with the rest of the
// cart vocabulary.
var ErrOwnItem = errors.New("you cannot add your own item to cart")

// Store is the single source of truth for one session's cart. Server state is
// authoritative: every mutation is followed by an awaited full refetch rather
// than an optimistic patch, so local state never diverges permanently.
type Store struct {
	api   API
	token string

	sfg singleflight.Group

	mu    sync.Mutex
	state State
	items []domain.CartItem
}

func NewStore(api API, token string) *Store {
	return &Store{
		api:   api,
		token: token,
		state: StateEmpty,
	}
}

// Fetch replaces the local cart with the server's copy. Read errors are
// swallowed: the store resets to an empty cart and logs, so a flaky read can
// never leave stale items on display. Concurrent fetches collapse into one
// request.
func (s *Store) Fetch(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	items, err, _ := s.sfg.Do("fetch", func() (interface{}, error) {
		return s.api.GetCart(ctx, s.token)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("cart fetch error: %v", err)
		s.items = nil
		s.state = StateEmpty
		return
	}
	s.items = items.([]domain.CartItem)
	s.state = StatePopulated
}

// Add puts an item in the server-side cart and resynchronizes before
// returning, so the caller observes post-mutation state. Write errors
// propagate.
func (s *Store) Add(ctx context.Context, itemID int64) error {
	if err := s.api.AddCartItem(ctx, s.token, itemID, 1); err != nil {
		return err
	}
	s.Fetch(ctx)
	return nil
}

// Remove deletes an item from the server-side cart, then resynchronizes.
func (s *Store) Remove(ctx context.Context, itemID int64) error {
	if err := s.api.RemoveCartItem(ctx, s.token, itemID); err != nil {
		return err
	}
	s.Fetch(ctx)
	return nil
}

// Clear drops local state without a round trip. Used after a finalized
// purchase, when the server has already emptied the cart itself.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.state = StateEmpty
}

func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total is the sum of item prices. Marketplace goods are unique, so quantity
// is always one and does not factor in.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, ci := range s.items {
		total = total.Add(ci.Item.Price)
	}
	return total
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
