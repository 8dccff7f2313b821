package token

import (
	"errors"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/pictora/pictora/internal/logger"
	"github.com/pictora/pictora/internal/session"
)

const (
	keyringService = "pictora"
	keyringKey     = "auth_token"
)

// KeyringStore persists the token in the OS keyring under a fixed key,
// so the session survives process restarts.
type KeyringStore struct{}

// NewKeyringStore creates a KeyringStore and registers it for logout.
func NewKeyringStore(coordinator *session.Coordinator) *KeyringStore {
	s := &KeyringStore{}
	coordinator.Register(s)
	return s
}

func (s *KeyringStore) Token() (string, bool) {
	value, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("keyring read failed", zap.Error(err))
		}
		return "", false
	}
	return value, value != ""
}

func (s *KeyringStore) Save(value string) {
	if value == "" {
		return
	}
	if err := keyring.Set(keyringService, keyringKey, value); err != nil {
		logger.Error("failed to persist access token", zap.Error(err))
	}
}

func (s *KeyringStore) Clear() {
	if err := keyring.Delete(keyringService, keyringKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("keyring delete failed", zap.Error(err))
	}
}

// ResetSession implements session.Resetter.
func (s *KeyringStore) ResetSession() {
	s.Clear()
}
