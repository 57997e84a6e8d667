// Package dashboard wires the service client, the query cache and the view
// transforms into the actions a user performs: load or refresh the listing,
// open a run and start a new one.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/flinketl/etldash/cache"
	"github.com/flinketl/etldash/model"
	"github.com/flinketl/etldash/view"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Client is the subset of the service client the dashboard needs.
type Client interface {
	ListRuns(ctx context.Context) ([]model.TestRun, error)
	GetRun(ctx context.Context, id string) (model.TestRun, error)
	CreateRun(ctx context.Context, req model.CreateTestRequest) (model.TestRun, error)
}

// Listing is the content of the runs page.
type Listing struct {
	Rows    []view.Row   `json:"rows"`
	Summary view.Summary `json:"summary"`
}

// Service serves dashboard views. It is safe for concurrent use.
type Service struct {
	logger  zerolog.Logger
	client  Client
	cache   *cache.Cache
	now     func() time.Time
	creates singleflight.Group
}

// Option is a function that configures a Service.
type Option func(*Service)

// WithCache shares an existing cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithClock sets the time used for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service.
func New(logger zerolog.Logger, client Client, opts ...Option) *Service {
	s := &Service{
		logger: logger,
		client: client,
		cache:  cache.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the query cache backing the service.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// ListRuns returns the raw runs newest first, from cache when possible.
func (s *Service) ListRuns(ctx context.Context) ([]model.TestRun, error) {
	v, err := s.cache.Get(ctx, cache.ListKey(), func(ctx context.Context) (any, error) {
		runs, err := s.client.ListRuns(ctx)
		if err != nil {
			return nil, err
		}
		return view.SortRuns(runs), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.TestRun), nil
}

// Runs returns the listing.
func (s *Service) Runs(ctx context.Context) (Listing, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return Listing{}, err
	}

	now := s.now()
	rows := make([]view.Row, len(runs))
	for i, run := range runs {
		rows[i] = view.NewRow(run, now)
	}
	return Listing{Rows: rows, Summary: view.Summarize(runs)}, nil
}

// Refresh drops cached runs and reloads the listing.
func (s *Service) Refresh(ctx context.Context) (Listing, error) {
	s.cache.Invalidate(cache.ListKey())
	s.cache.InvalidateOp(cache.OpGetRun)
	return s.Runs(ctx)
}

// GetRun returns a single raw run. Only runs in a terminal state stay
// cached; a run still in progress is fetched again on the next call.
func (s *Service) GetRun(ctx context.Context, id string) (model.TestRun, error) {
	key := cache.RunKey(id)
	v, err := s.cache.Get(ctx, key, func(ctx context.Context) (any, error) {
		return s.client.GetRun(ctx, id)
	})
	if err != nil {
		return model.TestRun{}, err
	}

	run := v.(model.TestRun)
	if !run.Status.Terminal() {
		s.cache.Invalidate(key)
	}
	return run, nil
}

// Run returns the detail view of a run.
func (s *Service) Run(ctx context.Context, id string) (view.Detail, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return view.Detail{}, err
	}
	return view.NewDetail(run, s.now()), nil
}

// Create starts a run. Invalid requests are rejected before reaching the
// service and identical submissions in flight share one call. The listing
// is invalidated once the run is created.
func (s *Service) Create(ctx context.Context, req model.CreateTestRequest) (model.TestRun, error) {
	if err := req.Validate(); err != nil {
		return model.TestRun{}, err
	}

	key := req.ImageTag + "\x00" + req.TestName + "\x00" + strconv.Itoa(req.NumberOfMessages)
	v, err, shared := s.creates.Do(key, func() (any, error) {
		return s.client.CreateRun(ctx, req)
	})
	if err != nil {
		return model.TestRun{}, fmt.Errorf("failed to start test: %w", err)
	}
	if shared {
		s.logger.Debug().Str("image", req.ImageTag).Msg("Joined in-flight create request")
	}

	run := v.(model.TestRun)
	s.cache.Invalidate(cache.ListKey())
	s.logger.Info().Str("id", run.ID).Str("image", run.ImageTag).Msg("Test started")
	return run, nil
}
