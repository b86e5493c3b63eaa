package stats

import (
	"sort"
	"strings"

	"notary-dash/internal/board"
)

// AggregateInput is everything the aggregation fold consumes.
type AggregateInput struct {
	Summaries  map[string]CardWindowSummary
	Details    map[string]board.CardDetail
	Catalog    *board.Catalog
	EntryLists map[string]bool
}

type aggregator struct {
	catalog *board.Catalog
	entry   map[string]bool
}

// Aggregate folds the per-card summaries into the report views. The result does not
// depend on map iteration order: cards are visited by id and every view is fully sorted.
func Aggregate(in AggregateInput) Report {
	a := aggregator{catalog: in.Catalog, entry: in.EntryLists}
	if a.catalog == nil {
		a.catalog = board.NewCatalog(nil)
	}

	ids := make([]string, 0, len(in.Summaries))
	for id := range in.Summaries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		overall   Overall
		rollups   = make(map[string]*ListRollup)
		summaries = make(map[string]*SummaryRow)
		actTypes  = make(map[string]int)
		created   = make(map[string]int)
		createdBy = make(map[string]*CreatedListCount)
		breakdown = make(map[[2]string]*BreakdownRow)
		pivot     = make(map[string]*PivotRow)
		columns   = make(map[string]bool)
		open      []OpenCard
	)

	for _, id := range ids {
		s := in.Summaries[id]
		d, hasDetail := in.Details[id]
		var detail *board.CardDetail
		if hasDetail {
			detail = &d
		}

		if s.CreatedInWindow {
			overall.CreatedCards++
			created[actTypeOf(detail)]++

			place := a.createdList(s, detail)
			row, ok := createdBy[place.ID]
			if !ok {
				row = &CreatedListCount{List: place}
				createdBy[place.ID] = row
			}
			row.Count++
			if place.IsEntry {
				overall.CreatedInEntryLists++
			}
		}

		if !s.ExistedInWindow {
			continue
		}

		overall.ExistedCards++
		if s.ArchivedInWindow {
			overall.ArchivedCards++
		}
		if s.ConcludedInWindow {
			overall.ConcludedCards++
		}
		if s.OpenAtTo {
			overall.OpenAtEnd++
		}
		inProgress := s.OpenAtTo && !s.ConcludedInWindow
		if inProgress {
			overall.InProgress++
		}

		actType := actTypeOf(detail)
		classified := actType != UndefinedActType
		hasAssignee := detail != nil && strings.TrimSpace(detail.AssigneeName) != ""
		var value float64
		hasValue := detail != nil && detail.ActValue != nil
		if hasValue {
			value = *detail.ActValue
			overall.HasValue++
			overall.ValueSum += value
		}
		if classified {
			overall.HasActType++
		}
		if hasAssignee {
			overall.HasAssignee++
		}
		actTypes[actType]++

		place := a.currentList(s, detail)

		roll, ok := rollups[place.ID]
		if !ok {
			roll = &ListRollup{List: place}
			rollups[place.ID] = roll
		}
		roll.Cards++
		if s.OpenAtTo {
			roll.OpenCards++
		}
		if classified {
			roll.WithActType++
		}
		if hasAssignee {
			roll.WithAssignee++
		}
		roll.ValueSum += value

		sum, ok := summaries[place.ID]
		if !ok {
			sum = &SummaryRow{List: place}
			summaries[place.ID] = sum
		}
		sum.Existed++
		if s.CreatedInWindow {
			sum.Created++
		}
		if s.ArchivedInWindow {
			sum.Archived++
		}
		if s.ConcludedInWindow {
			sum.Concluded++
		}
		if s.OpenAtTo {
			sum.OpenAtEnd++
		}
		if inProgress {
			sum.InProgress++
		}

		key := [2]string{place.ID, actType}
		cell, ok := breakdown[key]
		if !ok {
			cell = &BreakdownRow{List: place, ActType: actType}
			breakdown[key] = cell
		}
		cell.Count++

		pivotKey := strings.ToLower(place.Name)
		prow, ok := pivot[pivotKey]
		if !ok {
			prow = &PivotRow{List: place, Counts: make(map[string]int)}
			pivot[pivotKey] = prow
		} else if placementLess(place, prow.List) {
			prow.List = place
		}
		prow.Counts[actType]++
		prow.TotalCards++
		if classified {
			prow.ClassifiedTotal++
		}
		columns[actType] = true

		if s.OpenAtTo {
			oc := OpenCard{
				CardID:    id,
				List:      place,
				ActType:   actType,
				Concluded: s.ConcludedInWindow,
			}
			if detail != nil {
				oc.ActValue = detail.ActValue
				oc.AssigneeName = detail.AssigneeName
			}
			open = append(open, oc)
		}
	}

	overall.OpenedCards = NonNegative(overall.ExistedCards - overall.ConcludedCards)
	overall.ClassifiedPct = Percent(overall.HasActType, overall.ExistedCards)

	report := Report{
		Overall:         overall,
		ActTypes:        countActTypes(actTypes, overall.ExistedCards),
		CreatedActTypes: countActTypes(created, overall.CreatedCards),
		OpenCards:       open,
	}

	for _, r := range rollups {
		report.Lists = append(report.Lists, *r)
	}
	sort.Slice(report.Lists, func(i, j int) bool {
		return placementLess(report.Lists[i].List, report.Lists[j].List)
	})

	for _, r := range summaries {
		r.SharePct = Percent(r.Existed, overall.ExistedCards)
		report.Summary = append(report.Summary, *r)
	}
	sort.Slice(report.Summary, func(i, j int) bool {
		return placementLess(report.Summary[i].List, report.Summary[j].List)
	})

	for _, r := range createdBy {
		report.CreatedByList = append(report.CreatedByList, *r)
	}
	sort.Slice(report.CreatedByList, func(i, j int) bool {
		return placementLess(report.CreatedByList[i].List, report.CreatedByList[j].List)
	})

	for _, r := range breakdown {
		report.Breakdown = append(report.Breakdown, *r)
	}
	sort.Slice(report.Breakdown, func(i, j int) bool {
		a, b := report.Breakdown[i], report.Breakdown[j]
		if a.List.ID != b.List.ID {
			return placementLess(a.List, b.List)
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.ActType < b.ActType
	})

	for _, r := range pivot {
		r.ClassifiedPct = Percent(r.ClassifiedTotal, r.TotalCards)
		report.Pivot = append(report.Pivot, *r)
	}
	sort.Slice(report.Pivot, func(i, j int) bool {
		return placementLess(report.Pivot[i].List, report.Pivot[j].List)
	})

	for c := range columns {
		report.PivotColumns = append(report.PivotColumns, c)
	}
	sort.Slice(report.PivotColumns, func(i, j int) bool {
		ci, cj := report.PivotColumns[i], report.PivotColumns[j]
		// The undefined column always comes last.
		if (ci == UndefinedActType) != (cj == UndefinedActType) {
			return cj == UndefinedActType
		}
		return ci < cj
	})

	sort.Slice(report.OpenCards, func(i, j int) bool {
		a, b := report.OpenCards[i], report.OpenCards[j]
		if a.List.ID != b.List.ID {
			return placementLess(a.List, b.List)
		}
		return a.CardID < b.CardID
	})

	return report
}

func actTypeOf(d *board.CardDetail) string {
	if d == nil {
		return UndefinedActType
	}
	t := strings.TrimSpace(d.ActType)
	if t == "" {
		return UndefinedActType
	}
	return t
}

func countActTypes(counts map[string]int, total int) []ActTypeCount {
	out := make([]ActTypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, ActTypeCount{ActType: t, Count: n, Pct: Percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ActType < out[j].ActType
	})
	return out
}

// placementLess orders lists by position, unknown positions last, then by name and id.
func placementLess(a, b ListPlacement) bool {
	if a.HasPosition != b.HasPosition {
		return a.HasPosition
	}
	if a.HasPosition && a.Position != b.Position {
		return a.Position < b.Position
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

func (a aggregator) place(id, name string) ListPlacement {
	if l, ok := a.catalog.Lookup(id); ok {
		return ListPlacement{ID: l.ID, Name: l.Name, Position: l.Position, HasPosition: true, IsEntry: a.entry[l.ID]}
	}
	if name == "" {
		name = id
	}
	return ListPlacement{ID: id, Name: name, IsEntry: a.entry[id]}
}

func unknownPlacement() ListPlacement {
	return ListPlacement{ID: UnknownListID, Name: UnknownListID}
}

// currentList resolves the list at the end of the window, falling back to the enrichment.
func (a aggregator) currentList(s CardWindowSummary, d *board.CardDetail) ListPlacement {
	if s.ListAtTo != nil && s.ListAtTo.ID != "" {
		return a.place(s.ListAtTo.ID, s.ListAtTo.Name)
	}
	if d != nil && d.CurrentListID != "" {
		return a.place(d.CurrentListID, "")
	}
	return unknownPlacement()
}

// createdList attributes a created card to a list. A created_list_id from enrichment wins
// even when the catalog no longer holds it; the create event's list and a synthetic
// name-keyed entry are fallbacks.
func (a aggregator) createdList(s CardWindowSummary, d *board.CardDetail) ListPlacement {
	if d != nil {
		for _, id := range []string{d.CreatedListID, d.CreatedListAlias} {
			if _, ok := a.catalog.Lookup(id); ok {
				return a.place(id, "")
			}
		}
		if d.CreatedListID != "" {
			name := ""
			if ref := s.CreatedList; ref != nil && ref.ID == d.CreatedListID {
				name = ref.Name
			}
			return a.place(d.CreatedListID, name)
		}
	}

	if ref := s.CreatedList; ref != nil {
		if _, ok := a.catalog.Lookup(ref.ID); ok {
			return a.place(ref.ID, ref.Name)
		}
		if ref.Name != "" {
			if l, ok := a.catalog.FindByName(ref.Name); ok {
				return a.place(l.ID, l.Name)
			}
			return ListPlacement{ID: "name:" + strings.ToLower(strings.TrimSpace(ref.Name)), Name: ref.Name}
		}
		if ref.ID != "" {
			return a.place(ref.ID, "")
		}
	}

	return unknownPlacement()
}
