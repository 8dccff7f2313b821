package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictora/pictora/internal/auth"
	"github.com/pictora/pictora/internal/config"
	"github.com/pictora/pictora/internal/dispatch"
	"github.com/pictora/pictora/internal/requester"
	"github.com/pictora/pictora/internal/session"
)

func newService(t *testing.T, tokenURL string) *auth.Service {
	t.Helper()
	q := dispatch.New()
	t.Cleanup(q.Close)
	rq := requester.NewRequester(requester.Params{
		Queue:   q,
		Cookies: session.NewCookieStore(),
	})
	cfg := &config.Config{
		OAuth: config.OAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURI:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{"public"},
			AuthorizeURL: "https://auth.example.com/oauth/authorize",
			TokenURL:     tokenURL,
		},
	}
	return auth.NewService(auth.ServiceParams{
		Config:    cfg,
		Requester: rq,
		Queue:     q,
	})
}

func writeToken(t *testing.T, w http.ResponseWriter, value string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"access_token": value,
		"token_type":   "Bearer",
		"scope":        "public",
		"created_at":   1650000000,
	})
	if err != nil {
		t.Errorf("Failed to encode response: %v", err)
	}
}

func TestExchangeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		query := r.URL.Query()
		assert.Equal(t, "client-id", query.Get("client_id"))
		assert.Equal(t, "client-secret", query.Get("client_secret"))
		assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", query.Get("redirect_uri"))
		assert.Equal(t, "code-1", query.Get("code"))
		assert.Equal(t, "authorization_code", query.Get("grant_type"))
		writeToken(t, w, "access-token-1")
	}))
	defer server.Close()

	svc := newService(t, server.URL)

	done := make(chan struct{})
	svc.Exchange("code-1", func(token string, err error) {
		require.NoError(t, err)
		assert.Equal(t, "access-token-1", token)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("exchange never completed")
	}
}

func TestExchangeRejectsDuplicateInFlightCode(t *testing.T) {
	var requests atomic.Int32
	received := make(chan struct{}, 1)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		received <- struct{}{}
		<-release
		writeToken(t, w, "access-token-1")
	}))
	defer server.Close()
	defer close(release)

	svc := newService(t, server.URL)

	firstDone := make(chan error, 1)
	svc.Exchange("code-1", func(_ string, err error) {
		firstDone <- err
	})

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("first exchange never reached the server")
	}

	// Duplicate redirect callbacks re-submit the same code; the second
	// attempt must fail fast without another token request.
	secondDone := make(chan error, 1)
	svc.Exchange("code-1", func(_ string, err error) {
		secondDone <- err
	})

	select {
	case err := <-secondDone:
		assert.ErrorIs(t, err, auth.ErrInvalidRequest)
	case <-time.After(5 * time.Second):
		t.Fatal("duplicate exchange never completed")
	}

	release <- struct{}{}
	select {
	case err := <-firstDone:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first exchange never completed")
	}

	assert.Equal(t, int32(1), requests.Load(), "only one token request may be sent")
}

func TestExchangeFailureClearsInFlightGuard(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		writeToken(t, w, "access-token-2")
	}))
	defer server.Close()

	svc := newService(t, server.URL)

	firstDone := make(chan error, 1)
	svc.Exchange("code-1", func(_ string, err error) {
		firstDone <- err
	})
	var statusErr *requester.StatusError
	require.ErrorAs(t, <-firstDone, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)

	// The guard exists to catch races, not to block a deliberate retry
	// of the same code after completion.
	secondDone := make(chan error, 1)
	var token string
	svc.Exchange("code-1", func(value string, err error) {
		token = value
		secondDone <- err
	})
	require.NoError(t, <-secondDone)
	assert.Equal(t, "access-token-2", token)
}

func TestExchangeEmptyCode(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	svc := newService(t, server.URL)

	done := make(chan error, 1)
	svc.Exchange("", func(_ string, err error) {
		done <- err
	})

	assert.ErrorIs(t, <-done, auth.ErrInvalidRequest)
	assert.Equal(t, int32(0), requests.Load())
}

func TestExchangeNewCodeSupersedesPrevious(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") == "code-1" {
			<-release
			return
		}
		writeToken(t, w, "access-token-2")
	}))
	defer server.Close()
	defer close(release)

	svc := newService(t, server.URL)

	firstCalled := make(chan struct{}, 1)
	svc.Exchange("code-1", func(string, error) {
		firstCalled <- struct{}{}
	})

	secondDone := make(chan error, 1)
	var token string
	svc.Exchange("code-2", func(value string, err error) {
		token = value
		secondDone <- err
	})

	require.NoError(t, <-secondDone)
	assert.Equal(t, "access-token-2", token)

	// The superseded exchange was cancelled; its completion must not
	// fire as success.
	select {
	case <-firstCalled:
		t.Fatal("cancelled exchange invoked its completion")
	case <-time.After(300 * time.Millisecond):
	}
}
