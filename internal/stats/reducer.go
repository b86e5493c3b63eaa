package stats

import (
	"time"

	"notary-dash/internal/eventlog"
)

// Window is the closed time range [From, To] being analyzed.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// ListRef identifies a list as recorded on an event.
type ListRef struct {
	ID   string
	Name string
}

// CardWindowSummary is the reconstructed state of one card relative to a window.
type CardWindowSummary struct {
	CardID string

	ExistedInWindow   bool
	OpenAtFrom        bool
	OpenedInWindow    bool
	CreatedInWindow   bool
	ArchivedInWindow  bool
	ConcludedInWindow bool
	OpenAtTo          bool

	// SawEventBeforeFrom is false when OpenAtFrom was inferred from the first event.
	SawEventBeforeFrom bool

	ListAtTo    *ListRef
	CreatedList *ListRef
}

// ReduceCard replays the ordered events of a single card and reconstructs its state
// at both window boundaries. Events must be sorted ascending by OccurredAt.
//
// The card is Open after create/unarchive and Closed after archive/delete; moves only
// change the current list. When the history holds no event before From, the state at
// From is inferred from the first event: a bare "create" means the card did not exist
// yet, anything else means it already existed and was open. This is a heuristic for
// incomplete history, not a business rule.
func ReduceCard(events []eventlog.CardEvent, w Window, cfg Config) CardWindowSummary {
	var s CardWindowSummary

	var (
		open    bool
		current *ListRef
		first   *eventlog.CardEvent
	)

	for i := range events {
		e := &events[i]
		if e.OccurredAt.After(w.To) {
			continue
		}
		kind := e.Kind()
		if kind == eventlog.ActionIgnored {
			continue
		}
		if first == nil {
			first = e
			s.CardID = e.CardID
		}

		if e.TargetsList() {
			current = &ListRef{ID: e.ToListID, Name: e.ToListName}
		}

		switch kind {
		case eventlog.ActionCreate, eventlog.ActionUnarchive:
			open = true
		case eventlog.ActionArchive, eventlog.ActionDelete:
			open = false
		}

		if e.OccurredAt.Before(w.From) {
			// Last event before From wins.
			s.OpenAtFrom = open
			s.SawEventBeforeFrom = true
			continue
		}

		switch kind {
		case eventlog.ActionCreate:
			s.OpenedInWindow = true
			s.CreatedInWindow = true
			if s.CreatedList == nil && (e.ToListID != "" || e.ToListName != "") {
				s.CreatedList = &ListRef{ID: e.ToListID, Name: e.ToListName}
			}
		case eventlog.ActionUnarchive:
			s.OpenedInWindow = true
		case eventlog.ActionArchive, eventlog.ActionDelete:
			s.ArchivedInWindow = true
		}

		switch kind {
		case eventlog.ActionCreate, eventlog.ActionMove, eventlog.ActionUnarchive:
			if cfg.IsConcluded(e.ToListName) {
				s.ConcludedInWindow = true
			}
		}
	}

	if first == nil {
		return s
	}

	if !s.SawEventBeforeFrom {
		s.OpenAtFrom = !first.IsBareCreate()
	}

	s.ExistedInWindow = s.OpenAtFrom || s.OpenedInWindow
	s.OpenAtTo = open
	if current != nil {
		ref := *current
		s.ListAtTo = &ref
	}
	return s
}
