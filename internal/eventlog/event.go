package eventlog

import (
	"fmt"
	"time"
)

// Action is the normalized lifecycle transition carried by a CardEvent.
type Action int

const (
	// ActionIgnored covers every upstream action type the engine does not replay.
	ActionIgnored Action = iota
	// ActionCreate indicates the card came into existence (including copies and conversions).
	ActionCreate
	// ActionMove indicates the card changed list.
	ActionMove
	// ActionArchive indicates the card was closed.
	ActionArchive
	// ActionUnarchive indicates a closed card was reopened.
	ActionUnarchive
	// ActionDelete indicates the card was removed from the board.
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionMove:
		return "move"
	case ActionArchive:
		return "archive"
	case ActionUnarchive:
		return "unarchive"
	case ActionDelete:
		return "delete"
	default:
		return "ignored"
	}
}

// Upstream writes several creation-equivalent subtypes; all of them open a card.
var createAliases = map[string]bool{
	"create":                     true,
	"createCard":                 true,
	"copyCard":                   true,
	"convertToCardFromCheckItem": true,
}

// ParseAction maps a raw upstream action_type onto the Action union.
func ParseAction(raw string) Action {
	if createAliases[raw] {
		return ActionCreate
	}
	switch raw {
	case "move":
		return ActionMove
	case "archive":
		return ActionArchive
	case "unarchive":
		return ActionUnarchive
	case "delete":
		return ActionDelete
	default:
		return ActionIgnored
	}
}

// CardEvent represents a single lifecycle change of a card.
// It is the primary unit of the event-sourced log.
type CardEvent struct {
	// ID is the upstream row identifier, used only as a tie-breaker hint.
	ID int64 `json:"id,omitempty"`
	// CardID is the Trello card the event belongs to.
	CardID string `json:"card_id"`
	// ActionType is the raw upstream action type.
	ActionType string `json:"action_type"`
	// OccurredAt is when the change happened on the board.
	OccurredAt time.Time `json:"occurred_at"`

	FromListID   string `json:"from_list_id,omitempty"`
	FromListName string `json:"from_list_name,omitempty"`
	ToListID     string `json:"to_list_id,omitempty"`
	ToListName   string `json:"to_list_name,omitempty"`
}

// Kind returns the normalized action of the event.
func (e CardEvent) Kind() Action {
	return ParseAction(e.ActionType)
}

// IsBareCreate reports whether the raw action type is exactly "create",
// as opposed to one of the creation-equivalent subtypes.
func (e CardEvent) IsBareCreate() bool {
	return e.ActionType == "create"
}

// TargetsList reports whether the event moves the card into a known list.
func (e CardEvent) TargetsList() bool {
	switch e.Kind() {
	case ActionCreate, ActionMove, ActionUnarchive:
		return e.ToListID != ""
	}
	return false
}

// identity computes a unique string identifier for an event to aid deduplication.
func (e CardEvent) identity() string {
	return fmt.Sprintf("%d|%s|%d|%s|%s|%s",
		e.ID,
		e.CardID,
		e.OccurredAt.UnixMicro(),
		e.ActionType,
		e.FromListID,
		e.ToListID,
	)
}
