package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"notary-dash/internal/board"
	"notary-dash/internal/cache"
	"notary-dash/internal/config"
	"notary-dash/internal/dashboard"
	"notary-dash/internal/eventlog"
	"notary-dash/internal/metrics"
	"notary-dash/internal/pgstore"
	"notary-dash/internal/supabase"
)

// snapshot selects a local mockgen snapshot instead of the configured backend.
type snapshot struct {
	dir     string
	boardID string
}

// buildService wires sources, cache and metrics into a dashboard service.
// The returned cleanup releases connections and must always be called.
func buildService(ctx context.Context, cfg *config.AppConfig, snap snapshot, m *metrics.Metrics) (*dashboard.Service, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	src, err := buildSources(ctx, cfg, snap, &closers)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	svc := dashboard.NewService(src, dashboard.Options{
		Stats:       cfg.Stats,
		PageSize:    cfg.PageSize,
		ChunkSize:   cfg.ChunkSize,
		Concurrency: cfg.Concurrency,
		Cache:       buildCache(ctx, cfg, &closers),
		CacheTTL:    cfg.CacheTTL,
		CacheGrace:  cfg.CacheGrace,
		Metrics:     m,
	})
	if !svc.Configured() {
		log.Warn().Msg("No backend configured; window requests will answer 503")
	}
	return svc, cleanup, nil
}

func buildSources(ctx context.Context, cfg *config.AppConfig, snap snapshot, closers *[]func()) (dashboard.Sources, error) {
	if snap.dir != "" {
		store := eventlog.NewEventStore()
		if err := store.Load(snap.dir, snap.boardID); err != nil {
			return dashboard.Sources{}, err
		}
		fs, err := board.LoadFileSource(snap.dir)
		if err != nil {
			return dashboard.Sources{}, fmt.Errorf("failed to load snapshot %s: %w", snap.dir, err)
		}
		log.Info().Str("dir", snap.dir).Int("events", store.Count(snap.boardID)).Msg("Using local snapshot")
		return dashboard.Sources{Events: store.Source(snap.boardID), Lists: fs, Details: fs, Current: fs}, nil
	}

	switch cfg.Backend() {
	case config.BackendPostgres:
		db, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return dashboard.Sources{}, err
		}
		*closers = append(*closers, func() { _ = db.Close() })
		st := pgstore.NewStore(db)
		return dashboard.Sources{Events: st, Lists: st, Details: st, Current: st}, nil
	case config.BackendSupabase:
		client, err := supabase.NewClient(cfg.Supabase)
		if err != nil {
			return dashboard.Sources{}, err
		}
		return dashboard.Sources{Events: client, Lists: client, Details: client, Current: client}, nil
	default:
		return dashboard.Sources{}, nil
	}
}

// buildCache prefers Redis and falls back to the in-process cache when it is unreachable.
func buildCache(ctx context.Context, cfg *config.AppConfig, closers *[]func()) cache.Store {
	if cfg.CacheTTL == 0 {
		return cache.Nop{}
	}
	if cfg.RedisURL == "" {
		return cache.NewMemory()
	}

	rc, err := cache.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid REDIS_URL, using in-memory cache")
		return cache.NewMemory()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = rc.Close()
		log.Warn().Err(err).Msg("Redis unreachable, using in-memory cache")
		return cache.NewMemory()
	}
	*closers = append(*closers, func() { _ = rc.Close() })
	return rc
}
