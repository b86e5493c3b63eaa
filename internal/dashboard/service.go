// Package dashboard assembles the point-in-time board reports served to the dashboard.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"notary-dash/internal/board"
	"notary-dash/internal/cache"
	"notary-dash/internal/enrich"
	"notary-dash/internal/eventlog"
	"notary-dash/internal/metrics"
	"notary-dash/internal/stats"
)

var (
	// ErrNotConfigured means no upstream backend was configured; nothing is computed.
	ErrNotConfigured = errors.New("dashboard backend is not configured")
	// ErrUpstream wraps every failed upstream fetch.
	ErrUpstream = errors.New("upstream fetch failed")
	// ErrInvalidWindow is returned for windows whose start is after their end.
	ErrInvalidWindow = errors.New("invalid window: from is after to")
)

// Sources are the upstream collaborators of the service.
type Sources struct {
	Events  eventlog.Source
	Lists   board.ListSource
	Details board.DetailSource
	Current board.CurrentSource
}

func (s Sources) complete() bool {
	return s.Events != nil && s.Lists != nil && s.Details != nil
}

// Options tune the service.
type Options struct {
	Stats       stats.Config
	PageSize    int
	ChunkSize   int
	Concurrency int
	// Cache stores encoded closed windows. Caching is off unless both Cache and CacheTTL are set.
	Cache    cache.Store
	CacheTTL time.Duration
	// CacheGrace is how long after its end a window stays uncached, so late events still land.
	CacheGrace time.Duration
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Service runs the window pipeline: fetch, reduce, enrich, aggregate, assemble.
type Service struct {
	src        Sources
	cfg        stats.Config
	provider   *eventlog.LogProvider
	enricher   *enrich.Enricher
	cache      cache.Store
	cacheTTL   time.Duration
	cacheGrace time.Duration
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewService builds a Service. Missing sources leave it unconfigured rather than failing.
func NewService(src Sources, opts Options) *Service {
	s := &Service{
		src:        src,
		cfg:        opts.Stats,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		cacheGrace: opts.CacheGrace,
		metrics:    opts.Metrics,
		now:        opts.Now,
	}
	if s.cache == nil || s.cacheTTL <= 0 {
		s.cache = cache.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if src.Events != nil {
		s.provider = eventlog.NewLogProvider(src.Events, opts.PageSize)
	}
	if src.Details != nil {
		s.enricher = enrich.NewEnricher(src.Details, opts.ChunkSize, opts.Concurrency)
	}
	return s
}

// Configured reports whether the window pipeline can run.
func (s *Service) Configured() bool {
	return s.src.complete()
}

func (s *Service) upstream(stage string, err error) error {
	s.metrics.RecordUpstreamError(stage)
	return fmt.Errorf("%w: %s: %w", ErrUpstream, stage, err)
}

// Window computes the report for [from, to]. Any upstream failure fails the whole computation.
func (s *Service) Window(ctx context.Context, from, to time.Time) (*Response, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if from.After(to) {
		return nil, ErrInvalidWindow
	}
	w := stats.Window{From: from, To: to}
	start := s.now()

	var (
		events []eventlog.CardEvent
		lists  []board.ListMeta
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.provider.FetchUntil(gctx, to)
		if err != nil {
			return s.upstream("events", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lists, err = s.src.Lists.FetchLists(gctx)
		if err != nil {
			return s.upstream("lists", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := stats.CalculateWindow(events, w, s.cfg)
	existed := stats.ExistedCardIDs(summaries)

	details, err := s.enricher.Enrich(ctx, existed)
	if err != nil {
		return nil, s.upstream("details", err)
	}

	catalog := board.NewCatalog(lists)
	report := stats.Aggregate(stats.AggregateInput{
		Summaries:  summaries,
		Details:    details,
		Catalog:    catalog,
		EntryLists: stats.EntryListSet(lists, s.cfg),
	})

	s.metrics.RecordComputation(len(events), len(summaries))
	log.Info().
		Time("from", from).
		Time("to", to).
		Int("events", len(events)).
		Int("cards", len(summaries)).
		Int("existed", len(existed)).
		Dur("took", s.now().Sub(start)).
		Msg("Window computed")

	resp := Assemble(report, w, s.now().UTC())
	return &resp, nil
}

// WindowJSON returns the encoded report. Only windows that ended more than CacheGrace ago
// are cached; with caching off every call recomputes.
func (s *Service) WindowJSON(ctx context.Context, from, to time.Time) ([]byte, error) {
	_, off := s.cache.(cache.Nop)
	cacheable := !off && to.Before(s.now().Add(-s.cacheGrace))
	key := cache.WindowKey(from, to)

	if cacheable {
		b, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache lookup failed")
		}
		s.metrics.RecordCache(ok)
		if ok {
			return b, nil
		}
	}

	resp, err := s.Window(ctx, from, to)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache store failed")
		}
	}
	return b, nil
}

// Current returns the pre-aggregated current-state views served when no window is requested.
func (s *Service) Current(ctx context.Context) (json.RawMessage, error) {
	if s.src.Current == nil {
		return nil, ErrNotConfigured
	}
	raw, err := s.src.Current.FetchCurrent(ctx)
	if err != nil {
		return nil, s.upstream("current", err)
	}
	return raw, nil
}
