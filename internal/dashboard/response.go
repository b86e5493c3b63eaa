package dashboard

import (
	"time"

	"notary-dash/internal/stats"
)

// Response is the JSON contract of the dashboard window endpoint.
type Response struct {
	Window          WindowDTO        `json:"window"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Overall         OverallDTO       `json:"overall"`
	Lists           []ListRollupDTO  `json:"lists"`
	ActTypes        []ActTypeDTO     `json:"act_types"`
	CreatedActTypes []ActTypeDTO     `json:"created_act_types"`
	CreatedByList   []CreatedListDTO `json:"created_by_list"`
	Breakdown       []BreakdownDTO   `json:"breakdown"`
	PivotColumns    []string         `json:"pivot_columns"`
	Pivot           []PivotRowDTO    `json:"pivot"`
	Summary         []SummaryRowDTO  `json:"summary"`
	OpenCards       []OpenCardDTO    `json:"open_cards"`
}

// WindowDTO echoes the requested half-open window [from, to).
type WindowDTO struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OverallDTO carries the window-wide counters.
type OverallDTO struct {
	ExistedCards        int     `json:"existed_cards"`
	CreatedCards        int     `json:"created_cards"`
	ArchivedCards       int     `json:"archived_cards"`
	ConcludedCards      int     `json:"concluded_cards"`
	OpenAtEnd           int     `json:"open_at_end"`
	OpenedCards         int     `json:"opened_cards"`
	InProgress          int     `json:"in_progress"`
	CreatedInEntryLists int     `json:"created_in_entry_lists"`
	HasActType          int     `json:"has_act_type"`
	HasAssignee         int     `json:"has_assignee"`
	HasValue            int     `json:"has_value"`
	ValueSum            float64 `json:"value_sum"`
	ClassifiedPct       int     `json:"classified_pct"`
}

// ListDTO identifies a list in every view. Position is null when the list is not in the catalog.
type ListDTO struct {
	ListID   string   `json:"list_id"`
	ListName string   `json:"list_name"`
	Position *float64 `json:"position"`
	IsEntry  bool     `json:"is_entry"`
}

// ListRollupDTO is the per-list snapshot at the end of the window.
type ListRollupDTO struct {
	ListDTO
	Cards        int     `json:"cards"`
	OpenCards    int     `json:"open_cards"`
	WithActType  int     `json:"with_act_type"`
	WithAssignee int     `json:"with_assignee"`
	ValueSum     float64 `json:"value_sum"`
}

// ActTypeDTO counts created cards per act type.
type ActTypeDTO struct {
	ActType string `json:"act_type"`
	Count   int    `json:"count"`
	Pct     int    `json:"pct"`
}

// CreatedListDTO counts created cards per originating list.
type CreatedListDTO struct {
	ListDTO
	Count int `json:"count"`
}

// BreakdownDTO is one list and act type cell.
type BreakdownDTO struct {
	ListDTO
	ActType string `json:"act_type"`
	Count   int    `json:"count"`
}

// PivotRowDTO is one list row of the act type pivot.
type PivotRowDTO struct {
	ListDTO
	Counts          map[string]int `json:"counts"`
	TotalCards      int            `json:"total_cards"`
	ClassifiedTotal int            `json:"classified_total"`
	ClassifiedPct   int            `json:"classified_pct"`
}

// SummaryRowDTO summarizes window activity for one list.
type SummaryRowDTO struct {
	ListDTO
	Existed    int `json:"existed"`
	Created    int `json:"created"`
	Archived   int `json:"archived"`
	Concluded  int `json:"concluded"`
	OpenAtEnd  int `json:"open_at_end"`
	InProgress int `json:"in_progress"`
	SharePct   int `json:"share_pct"`
}

// OpenCardDTO is a card still open at the end of the window.
type OpenCardDTO struct {
	ListDTO
	CardID       string   `json:"card_id"`
	ActType      string   `json:"act_type"`
	ActValue     *float64 `json:"act_value"`
	AssigneeName string   `json:"assignee_name,omitempty"`
	Concluded    bool     `json:"concluded"`
}

func listDTO(p stats.ListPlacement) ListDTO {
	d := ListDTO{ListID: p.ID, ListName: p.Name, IsEntry: p.IsEntry}
	if p.HasPosition {
		pos := p.Position
		d.Position = &pos
	}
	return d
}

// Assemble maps a report onto the wire contract. Empty views encode as [] rather than null.
func Assemble(r stats.Report, w stats.Window, generatedAt time.Time) Response {
	o := r.Overall
	resp := Response{
		Window:      WindowDTO{From: w.From, To: w.To},
		GeneratedAt: generatedAt,
		Overall: OverallDTO{
			ExistedCards:        o.ExistedCards,
			CreatedCards:        o.CreatedCards,
			ArchivedCards:       o.ArchivedCards,
			ConcludedCards:      o.ConcludedCards,
			OpenAtEnd:           o.OpenAtEnd,
			OpenedCards:         o.OpenedCards,
			InProgress:          o.InProgress,
			CreatedInEntryLists: o.CreatedInEntryLists,
			HasActType:          o.HasActType,
			HasAssignee:         o.HasAssignee,
			HasValue:            o.HasValue,
			ValueSum:            o.ValueSum,
			ClassifiedPct:       o.ClassifiedPct,
		},
		Lists:           make([]ListRollupDTO, 0, len(r.Lists)),
		ActTypes:        actTypes(r.ActTypes),
		CreatedActTypes: actTypes(r.CreatedActTypes),
		CreatedByList:   make([]CreatedListDTO, 0, len(r.CreatedByList)),
		Breakdown:       make([]BreakdownDTO, 0, len(r.Breakdown)),
		PivotColumns:    append([]string{}, r.PivotColumns...),
		Pivot:           make([]PivotRowDTO, 0, len(r.Pivot)),
		Summary:         make([]SummaryRowDTO, 0, len(r.Summary)),
		OpenCards:       make([]OpenCardDTO, 0, len(r.OpenCards)),
	}

	for _, l := range r.Lists {
		resp.Lists = append(resp.Lists, ListRollupDTO{
			ListDTO:      listDTO(l.List),
			Cards:        l.Cards,
			OpenCards:    l.OpenCards,
			WithActType:  l.WithActType,
			WithAssignee: l.WithAssignee,
			ValueSum:     l.ValueSum,
		})
	}
	for _, c := range r.CreatedByList {
		resp.CreatedByList = append(resp.CreatedByList, CreatedListDTO{ListDTO: listDTO(c.List), Count: c.Count})
	}
	for _, b := range r.Breakdown {
		resp.Breakdown = append(resp.Breakdown, BreakdownDTO{ListDTO: listDTO(b.List), ActType: b.ActType, Count: b.Count})
	}
	for _, p := range r.Pivot {
		resp.Pivot = append(resp.Pivot, PivotRowDTO{
			ListDTO:         listDTO(p.List),
			Counts:          p.Counts,
			TotalCards:      p.TotalCards,
			ClassifiedTotal: p.ClassifiedTotal,
			ClassifiedPct:   p.ClassifiedPct,
		})
	}
	for _, s := range r.Summary {
		resp.Summary = append(resp.Summary, SummaryRowDTO{
			ListDTO:    listDTO(s.List),
			Existed:    s.Existed,
			Created:    s.Created,
			Archived:   s.Archived,
			Concluded:  s.Concluded,
			OpenAtEnd:  s.OpenAtEnd,
			InProgress: s.InProgress,
			SharePct:   s.SharePct,
		})
	}
	for _, c := range r.OpenCards {
		resp.OpenCards = append(resp.OpenCards, OpenCardDTO{
			ListDTO:      listDTO(c.List),
			CardID:       c.CardID,
			ActType:      c.ActType,
			ActValue:     c.ActValue,
			AssigneeName: c.AssigneeName,
			Concluded:    c.Concluded,
		})
	}
	return resp
}

func actTypes(in []stats.ActTypeCount) []ActTypeDTO {
	out := make([]ActTypeDTO, 0, len(in))
	for _, a := range in {
		out = append(out, ActTypeDTO{ActType: a.ActType, Count: a.Count, Pct: a.Pct})
	}
	return out
}
