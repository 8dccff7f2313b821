package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// CookieStore is an http.CookieJar whose contents can be wiped in one
// call. The authentication web flow and the API client share it, so a
// logout can drop every cookie the login web view accumulated.
type CookieStore struct {
	mu  sync.RWMutex
	jar http.CookieJar
}

// NewCookieStore creates an empty CookieStore.
func NewCookieStore() *CookieStore {
	return &CookieStore{jar: newJar()}
}

func newJar() http.CookieJar {
	// cookiejar.New only fails on invalid options; nil options cannot fail.
	jar, _ := cookiejar.New(nil)
	return jar
}

// SetCookies implements http.CookieJar.
func (s *CookieStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jar.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (s *CookieStore) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jar.Cookies(u)
}

// Reset discards every stored cookie.
func (s *CookieStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar = newJar()
}
