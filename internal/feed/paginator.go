package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/filter"
	"github.com/JanConnect/JanConnect-sub001/internal/geo"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/metrics"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/scoring"
	"github.com/JanConnect/JanConnect-sub001/internal/source"
	"github.com/JanConnect/JanConnect-sub001/internal/trending"
)

// DefaultPageSize is used when no page size is configured
const DefaultPageSize = 20

const tracerName = "github.com/JanConnect/JanConnect-sub001/internal/feed"

const (
	kindRefresh  = "refresh"
	kindLoadMore = "load_more"
)

var (
	// ErrBusy is returned when a fetch for the active mode is already running
	ErrBusy = errors.New("feed fetch already in progress")
	// ErrNoMore is returned by LoadMore once the source reported the last page
	ErrNoMore = errors.New("no more posts to load")
	// ErrNeedsRefresh is returned by LoadMore after a failed fetch
	ErrNeedsRefresh = errors.New("feed is in error state, refresh first")
	// ErrSuperseded is returned to a fetch whose result was discarded
	// because a newer refresh took over
	ErrSuperseded = errors.New("feed fetch superseded by a newer request")
)

// Status is the paginator's fetch state
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusRefreshing Status = "refreshing"
	StatusError      Status = "error"
)

// View is what the presentation layer renders
type View struct {
	Posts   []*models.Post         `json:"posts"`
	Topics  []models.TrendingTopic `json:"topics"`
	Status  Status                 `json:"status"`
	Err     string                 `json:"error,omitempty"`
	Mode    models.FilterMode      `json:"mode"`
	Page    int                    `json:"page"`
	HasMore bool                   `json:"has_more"`
	Loaded  int                    `json:"loaded"`
}

// Option configures a Paginator
type Option func(*Paginator)

// WithPageSize sets the page size requested from the source
func WithPageSize(n int) Option {
	return func(p *Paginator) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithClock overrides the clock used when rendering
func WithClock(now func() time.Time) Option {
	return func(p *Paginator) { p.now = now }
}

// WithTracerProvider overrides the global tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Paginator) { p.tracer = tp.Tracer(tracerName) }
}

// WithState makes the paginator fill an existing State
func WithState(s *State) Option {
	return func(p *Paginator) { p.state = s }
}

// WithFilterContext sets the initial location, municipality and radius
func WithFilterContext(fc filter.Context) Option {
	return func(p *Paginator) { p.filterCtx = fc }
}

// Paginator drives page fetches from a Source into a State. The mutex
// guards paginator fields only and is released before calling the source.
type Paginator struct {
	mu        sync.Mutex
	src       source.Source
	state     *State
	pageSize  int
	now       func() time.Time
	tracer    trace.Tracer
	filterCtx filter.Context

	mode    models.FilterMode
	page    int
	hasMore bool
	status  Status
	errMsg  string

	// gen changes whenever a refresh supersedes the in-flight fetch
	gen    uint64
	cancel context.CancelFunc
}

// NewPaginator creates a paginator reading from src
func NewPaginator(src source.Source, opts ...Option) *Paginator {
	p := &Paginator{
		src:      src,
		pageSize: DefaultPageSize,
		now:      time.Now,
		tracer:   otel.Tracer(tracerName),
		mode:     models.FilterTrendingToday,
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.state == nil {
		p.state = NewState()
	}
	return p
}

// State returns the post set the paginator fills
func (p *Paginator) State() *State {
	return p.state
}

// SetFilterContext updates the inputs used by location-aware modes
func (p *Paginator) SetFilterContext(userLocation *geo.Point, municipality string, radiusKm float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filterCtx.UserLocation = userLocation
	p.filterCtx.Municipality = municipality
	p.filterCtx.RadiusKm = radiusKm
}

// Refresh loads page 1 for mode and replaces the post set. Switching to a
// different mode while a fetch is outstanding cancels that fetch and its
// response is discarded.
func (p *Paginator) Refresh(ctx context.Context, mode models.FilterMode) error {
	m := metrics.Get()

	p.mu.Lock()
	if p.inFlightLocked() {
		if mode == p.mode {
			p.mu.Unlock()
			m.FeedRejectedFetches.WithLabelValues(kindRefresh, "busy").Inc()
			return ErrBusy
		}
		p.cancel()
		logger.Log.Debug("Superseding in-flight feed fetch",
			logger.WithMode(string(p.mode)),
			zap.String("new_mode", string(mode)),
		)
	}
	p.gen++
	gen := p.gen
	p.mode = mode
	p.status = StatusRefreshing
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	pageSize := p.pageSize
	p.mu.Unlock()

	page, err := p.fetch(fetchCtx, kindRefresh, mode, 1, pageSize)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.discardLocked(kindRefresh, mode)
		return ErrSuperseded
	}
	p.cancel = nil
	if err != nil {
		p.failLocked(kindRefresh, mode, err)
		return fmt.Errorf("failed to refresh feed: %w", err)
	}

	p.state.Replace(page.Posts)
	p.page = 1
	p.hasMore = computeHasMore(page, p.state.Len(), pageSize)
	p.status = StatusIdle
	p.errMsg = ""
	m.FeedFetchesTotal.WithLabelValues(kindRefresh, string(mode), "success").Inc()
	return nil
}

// LoadMore fetches the next page and appends it. Only valid while idle
// with more pages available.
func (p *Paginator) LoadMore(ctx context.Context) error {
	m := metrics.Get()

	p.mu.Lock()
	switch {
	case p.inFlightLocked():
		p.mu.Unlock()
		m.FeedRejectedFetches.WithLabelValues(kindLoadMore, "busy").Inc()
		return ErrBusy
	case p.status == StatusError:
		p.mu.Unlock()
		m.FeedRejectedFetches.WithLabelValues(kindLoadMore, "error_state").Inc()
		return ErrNeedsRefresh
	case !p.hasMore:
		p.mu.Unlock()
		m.FeedRejectedFetches.WithLabelValues(kindLoadMore, "no_more").Inc()
		return ErrNoMore
	}
	gen := p.gen
	mode := p.mode
	next := p.page + 1
	p.status = StatusLoading
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	pageSize := p.pageSize
	p.mu.Unlock()

	page, err := p.fetch(fetchCtx, kindLoadMore, mode, next, pageSize)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.discardLocked(kindLoadMore, mode)
		return ErrSuperseded
	}
	p.cancel = nil
	if err != nil {
		p.failLocked(kindLoadMore, mode, err)
		return fmt.Errorf("failed to load more posts: %w", err)
	}

	p.state.Append(page.Posts)
	p.page = next
	p.hasMore = computeHasMore(page, p.state.Len(), pageSize)
	p.status = StatusIdle
	p.errMsg = ""
	m.FeedFetchesTotal.WithLabelValues(kindLoadMore, string(mode), "success").Inc()
	return nil
}

// View scores, filters and aggregates the current set as of now
func (p *Paginator) View() View {
	start := time.Now()

	p.mu.Lock()
	mode := p.mode
	fc := p.filterCtx
	v := View{
		Status:  p.status,
		Err:     p.errMsg,
		Mode:    mode,
		Page:    p.page,
		HasMore: p.hasMore,
	}
	p.mu.Unlock()

	posts := p.state.Snapshot()
	fc.Now = p.now()
	scoring.Refresh(posts, fc.Now)
	v.Posts = filter.Apply(posts, mode, fc)
	v.Topics = trending.Aggregate(v.Posts)
	v.Loaded = len(posts)

	m := metrics.Get()
	m.FeedRenderDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	m.FeedPostsLoaded.WithLabelValues(string(mode)).Set(float64(len(posts)))
	return v
}

// Mode returns the active filter mode
func (p *Paginator) Mode() models.FilterMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Status returns the current fetch state
func (p *Paginator) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Paginator) inFlightLocked() bool {
	return p.status == StatusLoading || p.status == StatusRefreshing
}

func (p *Paginator) discardLocked(kind string, mode models.FilterMode) {
	m := metrics.Get()
	m.FeedStaleDiscarded.WithLabelValues(string(mode)).Inc()
	m.FeedFetchesTotal.WithLabelValues(kind, string(mode), "stale").Inc()
	logger.Log.Debug("Discarded stale feed response", logger.WithMode(string(mode)), zap.String("kind", kind))
}

// failLocked keeps the previous post set and records the error message
func (p *Paginator) failLocked(kind string, mode models.FilterMode, err error) {
	p.status = StatusError
	p.errMsg = err.Error()
	metrics.Get().FeedFetchesTotal.WithLabelValues(kind, string(mode), "error").Inc()
	logger.Log.Warn("Feed fetch failed",
		logger.WithMode(string(mode)),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

func (p *Paginator) fetch(ctx context.Context, kind string, mode models.FilterMode, page, pageSize int) (*source.FeedPage, error) {
	ctx, span := p.tracer.Start(ctx, "feed."+kind, trace.WithAttributes(
		attribute.String("feed.mode", string(mode)),
		attribute.Int("feed.page", page),
		attribute.Int("feed.page_size", pageSize),
	))
	defer span.End()

	start := time.Now()
	result, err := p.src.GetFeed(ctx, mode, page, pageSize)
	metrics.Get().FeedFetchDuration.WithLabelValues(kind, string(mode)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if result == nil {
		result = &source.FeedPage{}
	}
	span.SetAttributes(attribute.Int("feed.posts", len(result.Posts)))
	return result, nil
}

// computeHasMore prefers the source's explicit answer, then its total
// count, and falls back to treating a full page as "maybe more"
func computeHasMore(page *source.FeedPage, loaded, pageSize int) bool {
	if page.HasMore != nil {
		return *page.HasMore
	}
	if page.TotalCount > 0 {
		return loaded < page.TotalCount
	}
	return len(page.Posts) >= pageSize
}
