package token

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictora/pictora/internal/requester"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Token()
	assert.False(t, ok, "fresh store should be empty")

	s.Save("token-1")
	value, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, "token-1", value)
}

func TestMemoryStoreEmptySaveIsNoOp(t *testing.T) {
	s := NewMemoryStore()
	s.Save("token-1")

	// An empty value must never displace a stored token.
	s.Save("")

	value, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, "token-1", value)
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryStore()
	s.Save("token-1")

	s.Clear()

	_, ok := s.Token()
	assert.False(t, ok)
}

func TestMemoryStoreResetSession(t *testing.T) {
	s := NewMemoryStore()
	s.Save("token-1")

	s.ResetSession()

	_, ok := s.Token()
	assert.False(t, ok)
}

func TestBearerAuthorizer(t *testing.T) {
	tests := []struct {
		name       string
		stored     string
		wantErr    error
		wantHeader string
	}{
		{
			name:       "stamps stored token",
			stored:     "secret",
			wantHeader: "Bearer secret",
		},
		{
			name:    "fails without token",
			wantErr: requester.ErrNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.stored != "" {
				store.Save(tt.stored)
			}

			req, err := http.NewRequest(http.MethodGet, "https://api.example.com/photos", nil)
			require.NoError(t, err)

			err = NewBearerAuthorizer(store).Authorize(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, req.Header.Get("Authorization"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, req.Header.Get("Authorization"))
		})
	}
}
