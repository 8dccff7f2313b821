// Package token owns the bearer access token: the single shared
// credential every authenticated request reads. Absence of a token is a
// valid state meaning "unauthenticated".
package token

import "sync"

// Store persists and retrieves the access token.
//
// Save with an empty value is a no-op; only Clear removes a stored
// token. Implementations never surface storage errors: a failed read
// degrades to "no token", since authentication can always be
// re-attempted.
type Store interface {
	Token() (value string, ok bool)
	Save(value string)
	Clear()
}

// MemoryStore keeps the token in process memory. It backs tests and
// environments without an OS keyring.
type MemoryStore struct {
	mu    sync.Mutex
	value string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.value != ""
}

func (s *MemoryStore) Save(value string) {
	if value == "" {
		return
	}
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.value = ""
	s.mu.Unlock()
}

// ResetSession implements session.Resetter.
func (s *MemoryStore) ResetSession() {
	s.Clear()
}
