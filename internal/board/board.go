// Package board holds the static reference data of a Trello board (lists) and the
// denormalized card attributes used to enrich window reports.
package board

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
)

// ListMeta describes one workflow list of the board.
type ListMeta struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Position      float64 `json:"position"`
	Closed        bool    `json:"closed"`
	ExternalAlias string  `json:"external_alias,omitempty"`
}

// CardDetail carries the denormalized attributes of a card.
type CardDetail struct {
	ID               string   `json:"id"`
	ActType          string   `json:"act_type,omitempty"`
	ActValue         *float64 `json:"act_value,omitempty"`
	AssigneeName     string   `json:"assignee_name,omitempty"`
	CurrentListID    string   `json:"current_list_id,omitempty"`
	IsClosed         *bool    `json:"is_closed,omitempty"`
	CreatedListID    string   `json:"created_list_id,omitempty"`
	CreatedListAlias string   `json:"created_list_alias,omitempty"`
}

// ColumnSet selects which card attributes a DetailSource must return.
type ColumnSet int

const (
	// ColumnsRich includes the creation-list provenance columns.
	ColumnsRich ColumnSet = iota
	// ColumnsBase omits the provenance columns for schemas that lack them.
	ColumnsBase
)

func (c ColumnSet) String() string {
	if c == ColumnsBase {
		return "base"
	}
	return "rich"
}

// BaseColumns are present in every supported schema.
var BaseColumns = []string{"id", "act_type", "act_value", "assignee_name", "current_list_id", "is_closed"}

// RichColumns add creation-list provenance to BaseColumns.
var RichColumns = append(append([]string{}, BaseColumns...), "created_list_id", "created_list_alias")

// Columns returns the column names of the set.
func (c ColumnSet) Columns() []string {
	if c == ColumnsBase {
		return BaseColumns
	}
	return RichColumns
}

// ListSource loads the workflow lists of the board.
type ListSource interface {
	FetchLists(ctx context.Context) ([]ListMeta, error)
}

// DetailSource performs batched card attribute lookups.
type DetailSource interface {
	FetchDetails(ctx context.Context, ids []string, cols ColumnSet) ([]CardDetail, error)
}

// CurrentSource returns the pre-aggregated "current state" views served when no window is requested.
type CurrentSource interface {
	FetchCurrent(ctx context.Context) (json.RawMessage, error)
}

// Catalog indexes list metadata for a single request.
type Catalog struct {
	byID    map[string]ListMeta
	byAlias map[string]string
	byName  map[string]ListMeta
	ordered []ListMeta
}

// NewCatalog builds a Catalog. Lists are ordered by position, then name.
func NewCatalog(lists []ListMeta) *Catalog {
	c := &Catalog{
		byID:    make(map[string]ListMeta, len(lists)),
		byAlias: make(map[string]string),
		byName:  make(map[string]ListMeta),
	}
	for _, l := range lists {
		if l.ID == "" {
			continue
		}
		c.byID[l.ID] = l
		if l.ExternalAlias != "" {
			c.byAlias[l.ExternalAlias] = l.ID
		}
		key := strings.ToLower(strings.TrimSpace(l.Name))
		if _, taken := c.byName[key]; !taken {
			c.byName[key] = l
		}
		c.ordered = append(c.ordered, l)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		if c.ordered[i].Position != c.ordered[j].Position {
			return c.ordered[i].Position < c.ordered[j].Position
		}
		return c.ordered[i].Name < c.ordered[j].Name
	})
	return c
}

// Lists returns the lists ordered by position.
func (c *Catalog) Lists() []ListMeta {
	return c.ordered
}

// Get returns the list with the given internal id.
func (c *Catalog) Get(id string) (ListMeta, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// ResolveAlias maps an external (Trello) list id onto the internal id.
// Internal ids resolve to themselves.
func (c *Catalog) ResolveAlias(alias string) (string, bool) {
	if alias == "" {
		return "", false
	}
	if id, ok := c.byAlias[alias]; ok {
		return id, true
	}
	if _, ok := c.byID[alias]; ok {
		return alias, true
	}
	return "", false
}

// Lookup resolves an id that may be internal or external.
func (c *Catalog) Lookup(id string) (ListMeta, bool) {
	if resolved, ok := c.ResolveAlias(id); ok {
		return c.byID[resolved], true
	}
	return ListMeta{}, false
}

// FindByName returns the first list whose name matches case-insensitively.
func (c *Catalog) FindByName(name string) (ListMeta, bool) {
	l, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}
