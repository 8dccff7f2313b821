// Package session owns everything tied to one authenticated login:
// the registry of session-bound stores and the cookies picked up during
// the web login step. Logout fans a reset out to all of it.
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pictora/pictora/internal/logger"
)

// Resetter is implemented by every store holding session-scoped state.
type Resetter interface {
	ResetSession()
}

// Coordinator keeps the registry of session-bound stores. Stores
// register once at construction; there is no unregistration, the
// registry lives as long as the process.
type Coordinator struct {
	mu      sync.Mutex
	stores  []Resetter
	cookies *CookieStore
}

// NewCoordinator creates a Coordinator that also wipes the given cookie
// store on logout.
func NewCoordinator(cookies *CookieStore) *Coordinator {
	return &Coordinator{cookies: cookies}
}

// Register adds a store to the logout fan-out, in call order.
func (c *Coordinator) Register(store Resetter) {
	c.mu.Lock()
	c.stores = append(c.stores, store)
	c.mu.Unlock()
}

// Logout resets every registered store in registration order, then
// drops the web-session cookies. Calling it with no active session is
// a valid no-op.
func (c *Coordinator) Logout() {
	c.mu.Lock()
	stores := make([]Resetter, len(c.stores))
	copy(stores, c.stores)
	c.mu.Unlock()

	for _, store := range stores {
		store.ResetSession()
	}
	if c.cookies != nil {
		c.cookies.Reset()
	}

	logger.Info("session cleared", zap.Int("stores", len(stores)))
}
