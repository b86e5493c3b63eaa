package stats

import (
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"notary-dash/internal/board"
	"notary-dash/internal/eventlog"
)

// parallelThreshold is the card count above which reducers fan out across goroutines.
const parallelThreshold = 2048

// CalculateWindow partitions the event log by card and reduces every card independently.
// Events without a card id are dropped. Cards with no replayable event are absent from
// the result.
func CalculateWindow(events []eventlog.CardEvent, w Window, cfg Config) map[string]CardWindowSummary {
	var order []string
	parts := make(map[string][]eventlog.CardEvent)
	for _, e := range events {
		if e.CardID == "" {
			continue
		}
		if _, ok := parts[e.CardID]; !ok {
			order = append(order, e.CardID)
		}
		parts[e.CardID] = append(parts[e.CardID], e)
	}

	// One write-once slot per card.
	slots := make([]CardWindowSummary, len(order))
	reduce := func(i int) {
		evts := parts[order[i]]
		sort.SliceStable(evts, func(a, b int) bool {
			return evts[a].OccurredAt.Before(evts[b].OccurredAt)
		})
		slots[i] = ReduceCard(evts, w, cfg)
	}

	if len(order) >= parallelThreshold {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range order {
			g.Go(func() error {
				reduce(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range order {
			reduce(i)
		}
	}

	result := make(map[string]CardWindowSummary, len(order))
	for _, s := range slots {
		if s.CardID == "" {
			continue
		}
		result[s.CardID] = s
	}
	return result
}

// ExistedCardIDs returns the sorted ids of cards that existed during the window.
func ExistedCardIDs(summaries map[string]CardWindowSummary) []string {
	ids := make([]string, 0, len(summaries))
	for id, s := range summaries {
		if s.ExistedInWindow {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// EntryListSet resolves the entry/triage lists. Explicit ids win; otherwise lists
// whose names contain one of the configured markers are selected.
func EntryListSet(lists []board.ListMeta, cfg Config) map[string]bool {
	set := make(map[string]bool)

	if len(cfg.EntryListIDs) > 0 {
		explicit := make(map[string]bool, len(cfg.EntryListIDs))
		for _, id := range cfg.EntryListIDs {
			id = strings.TrimSpace(id)
			if id != "" {
				explicit[id] = true
				set[id] = true
			}
		}
		// Explicit ids may be given as external aliases.
		for _, l := range lists {
			if explicit[l.ExternalAlias] {
				set[l.ID] = true
			}
		}
		return set
	}

	markers := cfg.EntryListMarkers
	if markers == nil {
		markers = DefaultEntryListMarkers
	}
	for _, l := range lists {
		name := strings.ToLower(l.Name)
		for _, m := range markers {
			m = strings.ToLower(strings.TrimSpace(m))
			if m != "" && strings.Contains(name, m) {
				set[l.ID] = true
				break
			}
		}
	}
	return set
}
