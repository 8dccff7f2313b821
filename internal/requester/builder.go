package requester

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Builder assembles one API request: base URL, path segments, query
// parameters, credentials.
type Builder struct {
	method   string
	base     string
	segments []string
	query    url.Values
	auth     Authorizer
}

// NewBuilder creates a Builder for the given method and base URL.
func NewBuilder(method, baseURL string) *Builder {
	return &Builder{
		method: method,
		base:   baseURL,
		query:  url.Values{},
	}
}

// Path appends path segments to the request URL.
func (b *Builder) Path(segments ...string) *Builder {
	b.segments = append(b.segments, segments...)
	return b
}

// Query sets a query parameter.
func (b *Builder) Query(key, value string) *Builder {
	b.query.Set(key, value)
	return b
}

// Authorize applies auth when the request is built. Building fails if
// the authorizer cannot supply credentials, so no request leaves the
// process unauthenticated.
func (b *Builder) Authorize(auth Authorizer) *Builder {
	b.auth = auth
	return b
}

// Build produces the http.Request.
func (b *Builder) Build(ctx context.Context) (*http.Request, error) {
	u, err := url.JoinPath(b.base, b.segments...)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}
	if len(b.query) > 0 {
		u = u + "?" + b.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, b.method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	if b.auth != nil {
		if err := b.auth.Authorize(req); err != nil {
			return nil, err
		}
	}

	return req, nil
}
