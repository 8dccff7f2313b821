package profile_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictora/pictora/internal/config"
	"github.com/pictora/pictora/internal/dispatch"
	"github.com/pictora/pictora/internal/profile"
	"github.com/pictora/pictora/internal/requester"
	"github.com/pictora/pictora/internal/session"
	"github.com/pictora/pictora/internal/token"
)

type fixture struct {
	svc    *profile.Service
	avatar *profile.ImageService
	store  *token.MemoryStore
	coord  *session.Coordinator
}

func newFixture(t *testing.T, baseURL string) *fixture {
	t.Helper()
	q := dispatch.New()
	t.Cleanup(q.Close)

	rq := requester.NewRequester(requester.Params{
		Queue:   q,
		Cookies: session.NewCookieStore(),
	})

	store := token.NewMemoryStore()
	store.Save("test-token")

	coord := session.NewCoordinator(session.NewCookieStore())
	coord.Register(store)

	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL:      baseURL,
			PerPage:      10,
			AvatarWidth:  70,
			AvatarHeight: 70,
		},
	}
	authz := token.NewBearerAuthorizer(store)

	return &fixture{
		svc: profile.NewService(profile.ServiceParams{
			Config:      cfg,
			Requester:   rq,
			Queue:       q,
			Authorizer:  authz,
			Coordinator: coord,
		}),
		avatar: profile.NewImageService(profile.ImageServiceParams{
			Config:      cfg,
			Requester:   rq,
			Queue:       q,
			Authorizer:  authz,
			Coordinator: coord,
		}),
		store: store,
		coord: coord,
	}
}

const profileBody = `{
	"username": "ada",
	"first_name": "Ada",
	"last_name": "Lovelace",
	"bio": "first programmer"
}`

func TestFetchProfileCachesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(profileBody))
	}))
	defer server.Close()

	f := newFixture(t, server.URL)

	done := make(chan error, 1)
	var got profile.Profile
	f.svc.FetchProfile(func(p profile.Profile, err error) {
		got = p
		done <- err
	})
	require.NoError(t, <-done)

	want := profile.Profile{
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Bio:       "first programmer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	cached, ok := f.svc.Profile()
	require.True(t, ok)
	assert.Equal(t, want, cached)

	assert.Equal(t, "Ada Lovelace", got.FullName())
	assert.Equal(t, "@ada", got.LoginName())
}

func TestFullNameToleratesMissingLastName(t *testing.T) {
	p := profile.Profile{Username: "ada", FirstName: "Ada"}
	assert.Equal(t, "Ada", p.FullName())
}

func TestFetchProfileRejectsConcurrentFetch(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	received := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		received <- struct{}{}
		<-release
		_, _ = w.Write([]byte(profileBody))
	}))
	defer server.Close()
	defer close(release)

	f := newFixture(t, server.URL)

	firstDone := make(chan error, 1)
	f.svc.FetchProfile(func(_ profile.Profile, err error) {
		firstDone <- err
	})

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("first fetch never reached the server")
	}

	secondDone := make(chan error, 1)
	f.svc.FetchProfile(func(_ profile.Profile, err error) {
		secondDone <- err
	})
	assert.ErrorIs(t, <-secondDone, profile.ErrRequestAlreadyRunning)

	release <- struct{}{}
	require.NoError(t, <-firstDone)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchProfileWithoutToken(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	f := newFixture(t, server.URL)
	f.store.Clear()

	done := make(chan error, 1)
	f.svc.FetchProfile(func(_ profile.Profile, err error) {
		done <- err
	})

	assert.ErrorIs(t, <-done, profile.ErrInvalidRequest)
	assert.Equal(t, int32(0), requests.Load())
}

func TestLogoutClearsProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(profileBody))
	}))
	defer server.Close()

	f := newFixture(t, server.URL)

	done := make(chan error, 1)
	f.svc.FetchProfile(func(_ profile.Profile, err error) {
		done <- err
	})
	require.NoError(t, <-done)
	_, ok := f.svc.Profile()
	require.True(t, ok)

	f.coord.Logout()

	_, ok = f.svc.Profile()
	assert.False(t, ok, "profile must be absent after logout")
	_, ok = f.store.Token()
	assert.False(t, ok, "token must be absent after logout")
}
