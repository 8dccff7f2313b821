package token

import (
	"net/http"

	"github.com/pictora/pictora/internal/requester"
)

// BearerAuthorizer stamps requests with the stored bearer token.
type BearerAuthorizer struct {
	store Store
}

// NewBearerAuthorizer creates a BearerAuthorizer reading from store.
func NewBearerAuthorizer(store Store) *BearerAuthorizer {
	return &BearerAuthorizer{store: store}
}

// Authorize implements requester.Authorizer. It fails with
// requester.ErrNoToken when no token is stored, so callers can refuse
// to send the request at all.
func (a *BearerAuthorizer) Authorize(req *http.Request) error {
	value, ok := a.store.Token()
	if !ok {
		return requester.ErrNoToken
	}
	req.Header.Set("Authorization", "Bearer "+value)
	return nil
}
