// Package auth implements the authorization-code exchange: it trades a
// code captured from the login redirect for a bearer access token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pictora/pictora/internal/config"
	"github.com/pictora/pictora/internal/dispatch"
	"github.com/pictora/pictora/internal/logger"
	"github.com/pictora/pictora/internal/requester"
)

// ErrInvalidRequest indicates the exchange request could not be made:
// an empty code, a duplicate of the code already in flight, or a
// malformed token endpoint.
var ErrInvalidRequest = errors.New("invalid exchange request")

const grantTypeAuthorizationCode = "authorization_code"

// tokenResponse is the token endpoint reply. Only access_token is
// used; the rest is ignorable metadata.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
}

// Service performs the token exchange. At most one exchange is in
// flight: a new code cancels the previous attempt, while re-submitting
// the in-flight code fails fast. The host UI layer is known to
// double-fire redirect callbacks, and a code must never be exchanged
// twice.
type Service struct {
	mu          sync.Mutex
	cfg         *config.OAuthConfig
	rq          *requester.Requester
	queue       *dispatch.Queue
	currentCode string
	cancel      context.CancelFunc
}

type ServiceParams struct {
	fx.In

	Config    *config.Config
	Requester *requester.Requester
	Queue     *dispatch.Queue
}

// NewService creates an exchange Service.
func NewService(params ServiceParams) *Service {
	return &Service{
		cfg:   &params.Config.OAuth,
		rq:    params.Requester,
		queue: params.Queue,
	}
}

// Exchange trades code for an access token. The completion is invoked
// exactly once on the dispatch queue. No retries happen here; retrying
// is the caller's decision.
func (s *Service) Exchange(code string, completion func(token string, err error)) {
	if code == "" {
		s.fail(completion)
		return
	}

	s.mu.Lock()
	if s.currentCode == code {
		s.mu.Unlock()
		logger.Warn("exchange already in flight for this code")
		s.fail(completion)
		return
	}
	if s.cancel != nil {
		// A different code supersedes the previous exchange.
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.currentCode = code
	s.cancel = cancel
	s.mu.Unlock()

	req, err := s.tokenRequest(ctx, code)
	if err != nil {
		logger.Error("failed to build token request", zap.Error(err))
		s.finish(code)
		s.fail(completion)
		return
	}

	requester.Object[tokenResponse](s.rq, req, func(dto tokenResponse, err error) {
		s.finish(code)
		if err != nil {
			logger.Error("token exchange failed", zap.Error(err))
			completion("", err)
			return
		}
		completion(dto.AccessToken, nil)
	})
}

// finish clears the in-flight marker if it still belongs to code. The
// marker guards against races only, never against legitimate retries
// after completion.
func (s *Service) finish(code string) {
	s.mu.Lock()
	if s.currentCode == code {
		s.currentCode = ""
		s.cancel = nil
	}
	s.mu.Unlock()
}

func (s *Service) fail(completion func(string, error)) {
	s.queue.Post(func() {
		completion("", ErrInvalidRequest)
	})
}

func (s *Service) tokenRequest(ctx context.Context, code string) (*http.Request, error) {
	return requester.NewBuilder(http.MethodPost, s.cfg.TokenURL).
		Query("client_id", s.cfg.ClientID).
		Query("client_secret", s.cfg.ClientSecret).
		Query("redirect_uri", s.cfg.RedirectURI).
		Query("code", code).
		Query("grant_type", grantTypeAuthorizationCode).
		Build(ctx)
}
