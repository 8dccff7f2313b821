package feed

import (
	"context"
	"errors"
	"net/http"
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

// ErrWrongRequest indicates a like request could not be built,
// typically because no token is stored. Nothing is sent.
var ErrWrongRequest = errors.New("wrong like request")

const (
	photosPath = "photos"
	likePath   = "like"
)

// Service owns the photo list. Page fetches are strictly single-flight:
// a call while one is outstanding is dropped, not queued, so the page
// cursor advances at most once per physical request and results apply
// in request order.
type Service struct {
	mu       sync.Mutex
	cfg      *config.APIConfig
	rq       *requester.Requester
	queue    *dispatch.Queue
	auth     requester.Authorizer
	notifier *notify.Notifier[[]Photo]
	photos   []Photo
	index    map[string]int
	lastPage int
	fetching bool
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

// NewService creates a feed Service and registers it for logout.
func NewService(params ServiceParams) *Service {
	s := &Service{
		cfg:      &params.Config.API,
		rq:       params.Requester,
		queue:    params.Queue,
		auth:     params.Authorizer,
		notifier: notify.NewNotifier[[]Photo](params.Queue),
		index:    make(map[string]int),
	}
	params.Coordinator.Register(s)
	return s
}

// Photos returns a snapshot copy of the loaded photos.
func (s *Service) Photos() []Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastLoadedPage returns the page cursor; ok is false before the first
// successful fetch.
func (s *Service) LastLoadedPage() (page int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPage, s.lastPage > 0
}

// Subscribe registers an observer called with a fresh snapshot after
// every change to the photo list.
func (s *Service) Subscribe(fn func([]Photo)) *notify.Subscription {
	return s.notifier.Subscribe(fn)
}

// FetchNextPage loads the page after the last loaded one. It is a
// no-op while a fetch is outstanding, and silent when no token is
// stored. Observers learn the outcome through the change notification;
// a failed page leaves the cursor alone so the next call retries it.
func (s *Service) FetchNextPage() {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return
	}
	nextPage := s.lastPage + 1
	ctx, cancel := context.WithCancel(context.Background())
	s.fetching = true
	s.cancel = cancel
	gen := s.gen
	s.mu.Unlock()

	req, err := requester.NewBuilder(http.MethodGet, s.cfg.BaseURL).
		Path(photosPath).
		Query("page", strconv.Itoa(nextPage)).
		Query("per_page", strconv.Itoa(s.cfg.PerPage)).
		Authorize(s.auth).
		Build(ctx)
	if err != nil {
		logger.Warn("photo page request not sent", zap.Int("page", nextPage), zap.Error(err))
		cancel()
		s.clearFetching(gen)
		return
	}

	requester.Object[[]photoResponse](s.rq, req, func(dtos []photoResponse, err error) {
		s.mu.Lock()
		if s.gen != gen {
			// Session was reset while the request was in flight.
			s.mu.Unlock()
			return
		}
		s.fetching = false
		s.cancel = nil
		if err != nil {
			s.mu.Unlock()
			logger.Error("photo page fetch failed", zap.Int("page", nextPage), zap.Error(err))
			return
		}

		added := 0
		for _, dto := range dtos {
			// Server pages can overlap; ids already loaded are dropped.
			if _, ok := s.index[dto.ID]; ok {
				continue
			}
			photo := dto.toDomain()
			s.index[photo.ID] = len(s.photos)
			s.photos = append(s.photos, photo)
			added++
		}
		s.lastPage = nextPage
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		logger.Info("photo page loaded",
			zap.Int("page", nextPage),
			zap.Int("new_photos", added),
		)
		s.notifier.Publish(snapshot)
	})
}

// ChangeLike sets the liked state of a photo on the server, then
// mirrors it locally. The local flag changes only after confirmation,
// so a failed call never desyncs client and server. The completion is
// invoked exactly once on the dispatch queue.
func (s *Service) ChangeLike(photoID string, isLike bool, completion func(error)) {
	method := http.MethodPost
	if !isLike {
		method = http.MethodDelete
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	req, err := requester.NewBuilder(method, s.cfg.BaseURL).
		Path(photosPath, photoID, likePath).
		Authorize(s.auth).
		Build(context.Background())
	if err != nil {
		logger.Warn("like request not sent", zap.String("photo_id", photoID), zap.Error(err))
		s.queue.Post(func() {
			completion(ErrWrongRequest)
		})
		return
	}

	s.rq.Do(req, func(_ *requester.Response, err error) {
		if err != nil {
			logger.Error("like change failed",
				zap.String("photo_id", photoID),
				zap.Bool("is_like", isLike),
				zap.Error(err),
			)
			completion(err)
			return
		}

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			completion(nil)
			return
		}
		changed := false
		if i, ok := s.index[photoID]; ok {
			s.photos[i].Liked = isLike
			changed = true
		}
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		if changed {
			s.notifier.Publish(snapshot)
		}
		completion(nil)
	})
}

func (s *Service) snapshotLocked() []Photo {
	out := make([]Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

func (s *Service) clearFetching(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.fetching = false
		s.cancel = nil
	}
	s.mu.Unlock()
}

// ResetSession implements session.Resetter: it cancels any outstanding
// fetch and empties the photo list and page cursor.
func (s *Service) ResetSession() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.fetching = false
	s.photos = nil
	s.index = make(map[string]int)
	s.lastPage = 0
	s.mu.Unlock()
}
