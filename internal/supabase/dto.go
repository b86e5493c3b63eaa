package supabase

import (
	"time"

	"notary-dash/internal/board"
	"notary-dash/internal/eventlog"
)

// EventDTO is one row of the trello_events table.
type EventDTO struct {
	ID           int64     `json:"id"`
	CardID       *string   `json:"card_id"`
	ActionType   string    `json:"action_type"`
	OccurredAt   time.Time `json:"occurred_at"`
	FromListID   *string   `json:"from_list_id"`
	FromListName *string   `json:"from_list_name"`
	ToListID     *string   `json:"to_list_id"`
	ToListName   *string   `json:"to_list_name"`
}

// ListDTO is one row of the trello_lists table.
type ListDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Pos      *float64 `json:"pos"`
	Closed   *bool    `json:"closed"`
	TrelloID *string  `json:"trello_id"`
}

// CardDTO is one row of the cards table; provenance columns are absent in base mode.
type CardDTO struct {
	ID               string   `json:"id"`
	ActType          *string  `json:"act_type"`
	ActValue         *float64 `json:"act_value"`
	AssigneeName     *string  `json:"assignee_name"`
	CurrentListID    *string  `json:"current_list_id"`
	IsClosed         *bool    `json:"is_closed"`
	CreatedListID    *string  `json:"created_list_id,omitempty"`
	CreatedListAlias *string  `json:"created_list_alias,omitempty"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ToEvent maps a row onto the domain event.
func (d EventDTO) ToEvent() eventlog.CardEvent {
	return eventlog.CardEvent{
		ID:           d.ID,
		CardID:       str(d.CardID),
		ActionType:   d.ActionType,
		OccurredAt:   d.OccurredAt,
		FromListID:   str(d.FromListID),
		FromListName: str(d.FromListName),
		ToListID:     str(d.ToListID),
		ToListName:   str(d.ToListName),
	}
}

func (d ListDTO) ToList() board.ListMeta {
	l := board.ListMeta{
		ID:            d.ID,
		Name:          d.Name,
		ExternalAlias: str(d.TrelloID),
	}
	if d.Pos != nil {
		l.Position = *d.Pos
	}
	if d.Closed != nil {
		l.Closed = *d.Closed
	}
	return l
}

func (d CardDTO) ToDetail() board.CardDetail {
	return board.CardDetail{
		ID:               d.ID,
		ActType:          str(d.ActType),
		ActValue:         d.ActValue,
		AssigneeName:     str(d.AssigneeName),
		CurrentListID:    str(d.CurrentListID),
		IsClosed:         d.IsClosed,
		CreatedListID:    str(d.CreatedListID),
		CreatedListAlias: str(d.CreatedListAlias),
	}
}
