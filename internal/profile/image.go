package profile

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pictora/pictora/internal/config"
	"github.com/pictora/pictora/internal/dispatch"
	"github.com/pictora/pictora/internal/logger"
	"github.com/pictora/pictora/internal/notify"
	"github.com/pictora/pictora/internal/requester"
	"github.com/pictora/pictora/internal/session"
)

const usersPath = "users"

type userResponse struct {
	ProfileImage struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"profile_image"`
}

// ImageService fetches the user's avatar URL and broadcasts changes so
// observers react without polling.
type ImageService struct {
	mu        sync.Mutex
	cfg       *config.APIConfig
	rq        *requester.Requester
	queue     *dispatch.Queue
	auth      requester.Authorizer
	notifier  *notify.Notifier[string]
	avatarURL string
	cancel    context.CancelFunc
	gen       uint64
}

type ImageServiceParams struct {
	fx.In

	Config      *config.Config
	Requester   *requester.Requester
	Queue       *dispatch.Queue
	Authorizer  requester.Authorizer
	Coordinator *session.Coordinator
}

// NewImageService creates an ImageService and registers it for logout.
func NewImageService(params ImageServiceParams) *ImageService {
	s := &ImageService{
		cfg:      &params.Config.API,
		rq:       params.Requester,
		queue:    params.Queue,
		auth:     params.Authorizer,
		notifier: notify.NewNotifier[string](params.Queue),
	}
	params.Coordinator.Register(s)
	return s
}

// AvatarURL returns the last fetched avatar URL, if any.
func (s *ImageService) AvatarURL() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avatarURL, s.avatarURL != ""
}

// Subscribe registers an observer for avatar URL changes.
func (s *ImageService) Subscribe(fn func(avatarURL string)) *notify.Subscription {
	return s.notifier.Subscribe(fn)
}

// FetchAvatarURL requests the avatar URL for username. A new fetch
// supersedes any outstanding one. The completion is invoked exactly
// once on the dispatch queue (unless superseded).
func (s *ImageService) FetchAvatarURL(username string, completion func(string, error)) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	gen := s.gen
	s.mu.Unlock()

	req, err := requester.NewBuilder(http.MethodGet, s.cfg.BaseURL).
		Path(usersPath, username).
		Authorize(s.auth).
		Build(ctx)
	if err != nil {
		logger.Error("failed to build avatar request",
			zap.String("username", username),
			zap.Error(err),
		)
		cancel()
		s.clearInFlight(gen)
		s.queue.Post(func() {
			completion("", ErrInvalidRequest)
		})
		return
	}

	requester.Object[userResponse](s.rq, req, func(dto userResponse, err error) {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.cancel = nil
		if err != nil {
			s.mu.Unlock()
			logger.Error("avatar fetch failed", zap.Error(err))
			completion("", err)
			return
		}
		avatarURL := s.sizedURL(dto.ProfileImage.Small)
		s.avatarURL = avatarURL
		s.mu.Unlock()

		completion(avatarURL, nil)
		s.notifier.Publish(avatarURL)
	})
}

// sizedURL asks the origin server for a pre-sized thumbnail by adding
// pixel dimensions to the avatar URL.
func (s *ImageService) sizedURL(avatarURL string) string {
	u, err := url.Parse(avatarURL)
	if err != nil {
		return avatarURL
	}
	q := u.Query()
	q.Set("w", strconv.Itoa(s.cfg.AvatarWidth))
	q.Set("h", strconv.Itoa(s.cfg.AvatarHeight))
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *ImageService) clearInFlight(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.cancel = nil
	}
	s.mu.Unlock()
}

// ResetSession implements session.Resetter.
func (s *ImageService) ResetSession() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.avatarURL = ""
	s.mu.Unlock()
}
