package http

import (
	"sync"

	"github.com/codexaslam/OstaEasy/internal/cart"
	"github.com/codexaslam/OstaEasy/internal/checkout"
	"github.com/codexaslam/OstaEasy/internal/session"
)

// Runtime owns the live per-session state: one cart store and one checkout
// orchestrator per session, created lazily. Sessions themselves persist in
// the session store; these objects are process-local and rebuilt on demand.
type Runtime struct {
	cartAPI cart.API
	payAPI  checkout.PaymentAPI

	mu        sync.Mutex
	carts     map[string]*cart.Store
	checkouts map[string]*checkout.Orchestrator
}

func NewRuntime(cartAPI cart.API, payAPI checkout.PaymentAPI) *Runtime {
	return &Runtime{
		cartAPI:   cartAPI,
		payAPI:    payAPI,
		carts:     make(map[string]*cart.Store),
		checkouts: make(map[string]*checkout.Orchestrator),
	}
}

func (rt *Runtime) Cart(s *session.Session) *cart.Store {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	store, ok := rt.carts[s.ID]
	if !ok {
		store = cart.NewStore(rt.cartAPI, s.Token)
		rt.carts[s.ID] = store
	}
	return store
}

// Checkout returns the session's orchestrator. A currency change recreates it
// when idle; mid-flow the old currency sticks, a flow cannot switch currency.
func (rt *Runtime) Checkout(s *session.Session) *checkout.Orchestrator {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	orc, ok := rt.checkouts[s.ID]
	if ok && orc.Currency() != s.Currency && orc.State() == checkout.StateIdle {
		ok = false
	}
	if !ok {
		store, found := rt.carts[s.ID]
		if !found {
			store = cart.NewStore(rt.cartAPI, s.Token)
			rt.carts[s.ID] = store
		}
		orc = checkout.NewOrchestrator(rt.payAPI, store, s.Token, s.Currency)
		rt.checkouts[s.ID] = orc
	}
	return orc
}

// Drop forgets a session's runtime state, e.g. on logout.
func (rt *Runtime) Drop(sessionID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.carts, sessionID)
	delete(rt.checkouts, sessionID)
}
