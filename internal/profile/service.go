package profile

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
	"github.com/pictora/pictora/internal/session"
)

var (
	// ErrInvalidRequest indicates the profile request could not be
	// built, typically because no token is stored.
	ErrInvalidRequest = errors.New("invalid profile request")

	// ErrRequestAlreadyRunning rejects a fetch while one is
	// outstanding, so two responses never race to overwrite the cache.
	ErrRequestAlreadyRunning = errors.New("profile request is already running")
)

const currentUserPath = "me"

// Service fetches the authenticated user's profile.
type Service struct {
	mu       sync.Mutex
	cfg      *config.APIConfig
	rq       *requester.Requester
	queue    *dispatch.Queue
	auth     requester.Authorizer
	profile  *Profile
	inFlight bool
	cancel   context.CancelFunc
	gen      uint64
}

type ServiceParams struct {
	fx.In

	Config      *config.Config
	Requester   *requester.Requester
	Queue       *dispatch.Queue
	Authorizer  requester.Authorizer
	Coordinator *session.Coordinator
}

// NewService creates a profile Service and registers it for logout.
func NewService(params ServiceParams) *Service {
	s := &Service{
		cfg:   &params.Config.API,
		rq:    params.Requester,
		queue: params.Queue,
		auth:  params.Authorizer,
	}
	params.Coordinator.Register(s)
	return s
}

// Profile returns the last fetched profile, if any.
func (s *Service) Profile() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// FetchProfile requests the current user's profile. The completion is
// invoked exactly once on the dispatch queue.
func (s *Service) FetchProfile(completion func(Profile, error)) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		logger.Warn("profile fetch already running, rejecting this one")
		s.queue.Post(func() {
			completion(Profile{}, ErrRequestAlreadyRunning)
		})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.inFlight = true
	s.cancel = cancel
	gen := s.gen
	s.mu.Unlock()

	req, err := requester.NewBuilder(http.MethodGet, s.cfg.BaseURL).
		Path(currentUserPath).
		Authorize(s.auth).
		Build(ctx)
	if err != nil {
		logger.Error("failed to build profile request", zap.Error(err))
		cancel()
		s.clearInFlight(gen)
		s.queue.Post(func() {
			completion(Profile{}, ErrInvalidRequest)
		})
		return
	}

	requester.Object[profileResponse](s.rq, req, func(dto profileResponse, err error) {
		s.mu.Lock()
		if s.gen != gen {
			// Session was reset while the request was in flight.
			s.mu.Unlock()
			return
		}
		s.inFlight = false
		s.cancel = nil
		if err != nil {
			s.mu.Unlock()
			logger.Error("profile fetch failed", zap.Error(err))
			completion(Profile{}, err)
			return
		}
		domain := dto.toDomain()
		s.profile = &domain
		s.mu.Unlock()
		completion(domain, nil)
	})
}

func (s *Service) clearInFlight(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.inFlight = false
		s.cancel = nil
	}
	s.mu.Unlock()
}

// ResetSession implements session.Resetter: it cancels any outstanding
// fetch and drops the cached profile.
func (s *Service) ResetSession() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.inFlight = false
	s.profile = nil
	s.mu.Unlock()
}
