package eventlog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 1000

// Source is a paged, append-only event log ordered ascending by occurrence time.
type Source interface {
	// FetchEventPage returns at most limit events with OccurredAt <= to, skipping offset events.
	// A page shorter than limit signals the end of the data.
	FetchEventPage(ctx context.Context, to time.Time, offset, limit int) ([]CardEvent, error)
}

// LogProvider orchestrates paged event retrieval.
type LogProvider struct {
	source   Source
	pageSize int
}

// NewLogProvider wraps source. A non-positive pageSize uses DefaultPageSize.
func NewLogProvider(source Source, pageSize int) *LogProvider {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &LogProvider{
		source:   source,
		pageSize: pageSize,
	}
}

// FetchUntil retrieves every event with OccurredAt <= to, page by page.
// Any failing page fails the whole fetch; no partial log is returned.
func (p *LogProvider) FetchUntil(ctx context.Context, to time.Time) ([]CardEvent, error) {
	var all []CardEvent
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := p.source.FetchEventPage(ctx, to, offset, p.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch events page at offset %d: %w", offset, err)
		}

		all = append(all, page...)
		offset += len(page)

		log.Debug().Int("offset", offset).Int("page", len(page)).Msg("Fetched event page")

		if len(page) < p.pageSize {
			break
		}
	}

	// Pages arrive ordered; the stable sort only guards against sources that are not.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].OccurredAt.Before(all[j].OccurredAt)
	})

	log.Info().Int("events", len(all)).Time("to", to).Msg("Event log fetched")
	return all, nil
}
