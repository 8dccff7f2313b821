// Package requester is the HTTP envelope around every API call: it
// executes the transport on an I/O goroutine, classifies failures into
// a small typed taxonomy, and posts each completion exactly once onto
// the shared dispatch queue.
package requester

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pictora/pictora/internal/dispatch"
	"github.com/pictora/pictora/internal/logger"
	"github.com/pictora/pictora/internal/session"
)

// Authorizer applies credentials to an outgoing request.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// Response represents a decoded-enough HTTP response: status, raw body
// and headers.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Requester executes HTTP requests and delivers their completions on
// the dispatch queue.
type Requester struct {
	client *http.Client
	queue  *dispatch.Queue
}

type Params struct {
	fx.In

	Queue   *dispatch.Queue
	Cookies *session.CookieStore
}

// NewRequester creates a Requester with default configuration.
func NewRequester(params Params) *Requester {
	return &Requester{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     params.Cookies,
		},
		queue: params.Queue,
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *Requester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// Do executes req on an I/O goroutine. The completion is invoked
// exactly once, on the dispatch queue, with either a 2xx response or a
// classified error. A cancelled request invokes nothing: its owner has
// already moved on.
func (r *Requester) Do(req *http.Request, completion func(*Response, error)) {
	go func() {
		resp, err := r.perform(req)
		if err != nil && errors.Is(err, context.Canceled) {
			logger.Debug("request cancelled", zap.String("url", req.URL.String()))
			return
		}
		r.queue.Post(func() {
			completion(resp, err)
		})
	}()
}

func (r *Requester) perform(req *http.Request) (*Response, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		logger.Error("request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.Warn("unexpected status",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

// Object executes req and decodes the JSON response body into T. The
// completion follows the same delivery rules as Do.
func Object[T any](r *Requester, req *http.Request, completion func(T, error)) {
	r.Do(req, func(resp *Response, err error) {
		var dto T
		if err != nil {
			completion(dto, err)
			return
		}
		if err := json.Unmarshal(resp.Body, &dto); err != nil {
			logger.Error("failed to decode response",
				zap.String("url", req.URL.String()),
				zap.Error(err),
			)
			var zero T
			completion(zero, &DecodeError{Err: err})
			return
		}
		completion(dto, nil)
	})
}
