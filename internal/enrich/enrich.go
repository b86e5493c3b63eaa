// Package enrich fetches denormalized card attributes for the cards of a window.
package enrich

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"notary-dash/internal/board"
)

const (
	// DefaultChunkSize bounds the ids sent in one detail lookup.
	DefaultChunkSize = 200
	// DefaultConcurrency bounds the chunks fetched in parallel.
	DefaultConcurrency = 4
)

// Enricher looks up card details in bounded chunks.
type Enricher struct {
	source      board.DetailSource
	chunkSize   int
	concurrency int
}

// NewEnricher returns an Enricher. Non-positive sizes fall back to the defaults.
func NewEnricher(source board.DetailSource, chunkSize, concurrency int) *Enricher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{
		source:      source,
		chunkSize:   chunkSize,
		concurrency: concurrency,
	}
}

// Enrich returns the details of the given cards keyed by id. The rich column set is tried
// first; if any chunk fails the whole lookup is repeated once with the base column set.
func (e *Enricher) Enrich(ctx context.Context, ids []string) (map[string]board.CardDetail, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return map[string]board.CardDetail{}, nil
	}

	details, err := e.fetchAll(ctx, ids, board.ColumnsRich)
	if err == nil {
		return details, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	log.Warn().Err(err).Int("cards", len(ids)).Msg("Rich detail lookup failed, retrying with base columns")

	details, err = e.fetchAll(ctx, ids, board.ColumnsBase)
	if err != nil {
		return nil, fmt.Errorf("fetch card details: %w", err)
	}
	return details, nil
}

func (e *Enricher) fetchAll(ctx context.Context, ids []string, cols board.ColumnSet) (map[string]board.CardDetail, error) {
	chunks := Chunk(ids, e.chunkSize)
	results := make([][]board.CardDetail, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			rows, err := e.source.FetchDetails(gctx, chunk, cols)
			if err != nil {
				return fmt.Errorf("chunk %d (%s columns): %w", i, cols, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]board.CardDetail, len(ids))
	for _, rows := range results {
		for _, d := range rows {
			if d.ID != "" {
				out[d.ID] = d
			}
		}
	}

	log.Debug().Int("requested", len(ids)).Int("found", len(out)).Str("columns", cols.String()).Msg("Card details fetched")
	return out, nil
}

// Chunk splits ids into consecutive slices of at most size elements.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
