package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/codexaslam/OstaEasy/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	m      sync.Mutex
	prices map[int64]string
	items  []domain.CartItem
	nextID int64

	getErr    error
	addErr    error
	removeErr error

	// When set, GetCart blocks until the channel is closed, so a test can
	// hold a fetch in flight.
	getGate chan struct{}

	calls []string
}

func newMockAPI(prices map[int64]string) *mockAPI {
	return &mockAPI{prices: prices}
}

func (m *mockAPI) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockAPI) GetCart(_ context.Context, _ string) ([]domain.CartItem, error) {
	m.m.Lock()
	m.record("get")
	gate := m.getGate
	m.m.Unlock()

	if gate != nil {
		<-gate
	}

	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]domain.CartItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockAPI) AddCartItem(_ context.Context, _ string, itemID int64, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.record(fmt.Sprintf("add:%d", itemID))
	if m.addErr != nil {
		return m.addErr
	}
	for _, ci := range m.items {
		if ci.Item.ID == itemID {
			return errors.New("Item already in cart")
		}
	}
	m.nextID++
	m.items = append(m.items, domain.CartItem{
		ID: m.nextID,
		Item: domain.Item{
			ID:       itemID,
			Price:    decimal.RequireFromString(m.prices[itemID]),
			Currency: "EUR",
		},
		Quantity: quantity,
	})
	return nil
}

func (m *mockAPI) RemoveCartItem(_ context.Context, _ string, itemID int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.record(fmt.Sprintf("remove:%d", itemID))
	if m.removeErr != nil {
		return m.removeErr
	}
	for i, ci := range m.items {
		if ci.Item.ID == itemID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return errors.New("Item not in cart")
}

func TestFetch_ReplacesLocalState(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "19.99", 2: "5.00"})
	require.NoError(t, api.AddCartItem(context.Background(), "tok", 1, 1))
	require.NoError(t, api.AddCartItem(context.Background(), "tok", 2, 1))

	store := NewStore(api, "tok")
	assert.Equal(t, StateEmpty, store.State())

	store.Fetch(context.Background())

	assert.Equal(t, StatePopulated, store.State())
	assert.Equal(t, 2, store.Count())
	assert.True(t, store.Total().Equal(decimal.RequireFromString("24.99")), "got %s", store.Total())
}

func TestFetch_Idempotent(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "10.00"})
	require.NoError(t, api.AddCartItem(context.Background(), "tok", 1, 1))

	store := NewStore(api, "tok")
	store.Fetch(context.Background())
	first := store.Items()
	firstCount := store.Count()

	store.Fetch(context.Background())

	assert.Equal(t, first, store.Items())
	assert.Equal(t, firstCount, store.Count())
	assert.Equal(t, StatePopulated, store.State())
}

func TestFetch_ErrorResetsToEmpty(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "10.00"})
	require.NoError(t, api.AddCartItem(context.Background(), "tok", 1, 1))

	store := NewStore(api, "tok")
	store.Fetch(context.Background())
	require.Equal(t, 1, store.Count())

	api.m.Lock()
	api.getErr = errors.New("network down")
	api.m.Unlock()

	// Must not panic or surface the error; local state resets to empty.
	store.Fetch(context.Background())

	assert.Equal(t, 0, store.Count())
	assert.Equal(t, StateEmpty, store.State())
	assert.True(t, store.Total().IsZero())
}

func TestFetch_ConcurrentFetchesCollapse(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "10.00"})
	require.NoError(t, api.AddCartItem(context.Background(), "tok", 1, 1))

	release := make(chan struct{})
	api.m.Lock()
	api.getGate = release
	api.calls = nil
	api.m.Unlock()

	store := NewStore(api, "tok")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Fetch(context.Background())
		}()
	}

	// Let every goroutine pile onto the in-flight fetch before the upstream
	// responds.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	api.m.Lock()
	gets := len(api.calls)
	api.m.Unlock()

	assert.Equal(t, 1, gets, "concurrent fetches must share one upstream request")
	assert.Equal(t, StatePopulated, store.State())
	assert.Equal(t, 1, store.Count())
}

func TestAdd_ResynchronizesBeforeReturning(t *testing.T) {
	api := newMockAPI(map[int64]string{7: "12.50"})
	store := NewStore(api, "tok")

	err := store.Add(context.Background(), 7)

	require.NoError(t, err)
	// The awaited refetch already happened: the caller observes
	// post-mutation state without any extra call.
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, []string{"add:7", "get"}, api.calls)
}

func TestAdd_ErrorPropagatesWithoutRefetch(t *testing.T) {
	api := newMockAPI(nil)
	api.addErr = errors.New("Item already in cart")
	store := NewStore(api, "tok")

	err := store.Add(context.Background(), 7)

	require.Error(t, err)
	assert.Equal(t, []string{"add:7"}, api.calls)
	assert.Equal(t, 0, store.Count())
}

func TestRemove_Resynchronizes(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "10.00", 2: "20.00"})
	store := NewStore(api, "tok")
	require.NoError(t, store.Add(context.Background(), 1))
	require.NoError(t, store.Add(context.Background(), 2))

	err := store.Remove(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, int64(2), store.Items()[0].Item.ID)
}

func TestRemove_ErrorPropagates(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "10.00"})
	store := NewStore(api, "tok")
	require.NoError(t, store.Add(context.Background(), 1))

	api.m.Lock()
	api.removeErr = errors.New("boom")
	api.m.Unlock()

	err := store.Remove(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, 1, store.Count(), "failed remove must not touch local state")
}

// Count equals successful distinct adds minus successful removes for any
// sequential mutation sequence.
func TestCount_TracksMutationSequence(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "1.00", 2: "2.00", 3: "3.00"})
	store := NewStore(api, "tok")
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1))
	require.NoError(t, store.Add(ctx, 2))
	require.Error(t, store.Add(ctx, 2), "duplicate add is rejected upstream")
	require.NoError(t, store.Add(ctx, 3))
	require.NoError(t, store.Remove(ctx, 2))

	assert.Equal(t, 2, store.Count())
	assert.True(t, store.Total().Equal(decimal.RequireFromString("4.00")), "got %s", store.Total())
}

func TestClear_IsLocalOnly(t *testing.T) {
	api := newMockAPI(map[int64]string{1: "10.00"})
	store := NewStore(api, "tok")
	require.NoError(t, store.Add(context.Background(), 1))
	callsBefore := len(api.calls)

	store.Clear()

	assert.Equal(t, 0, store.Count())
	assert.Equal(t, StateEmpty, store.State())
	assert.Len(t, api.calls, callsBefore, "Clear must not hit the network")
}
