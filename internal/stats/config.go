package stats

import "strings"

// DefaultConcludedMarker matches list names such as "Concluído" or "Conclusão".
const DefaultConcludedMarker = "conclu"

// DefaultEntryListMarkers match the intake lists of the office board.
var DefaultEntryListMarkers = []string{"triagem", "entrada"}

// Config holds the board-specific heuristics of the window engine.
type Config struct {
	// EntryListIDs explicitly names the entry/triage lists. Takes precedence over markers.
	EntryListIDs []string
	// EntryListMarkers are case-insensitive substrings identifying entry lists by name.
	EntryListMarkers []string
	// ConcludedMarker is a case-insensitive substring identifying "concluded" lists by name.
	ConcludedMarker string
}

// DefaultConfig returns the heuristics used by the office board.
func DefaultConfig() Config {
	return Config{
		EntryListMarkers: append([]string(nil), DefaultEntryListMarkers...),
		ConcludedMarker:  DefaultConcludedMarker,
	}
}

// IsConcluded reports whether a list name denotes a concluded stage.
func (c Config) IsConcluded(listName string) bool {
	if listName == "" {
		return false
	}
	marker := c.ConcludedMarker
	if marker == "" {
		marker = DefaultConcludedMarker
	}
	return strings.Contains(strings.ToLower(listName), strings.ToLower(marker))
}
