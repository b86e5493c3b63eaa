package stats

const (
	// UndefinedActType labels cards without a classification.
	UndefinedActType = "undefined"
	// UnknownListID groups cards whose list cannot be determined.
	UnknownListID = "unknown"
)

// ListPlacement is a list resolved against the board catalog.
type ListPlacement struct {
	ID          string
	Name        string
	Position    float64
	HasPosition bool
	IsEntry     bool
}

// Overall holds the window-wide counters.
type Overall struct {
	ExistedCards   int
	CreatedCards   int
	ArchivedCards  int
	ConcludedCards int
	OpenAtEnd      int
	// OpenedCards is max(0, ExistedCards-ConcludedCards).
	OpenedCards int
	// InProgress counts cards open at the end of the window and not concluded in it.
	InProgress          int
	CreatedInEntryLists int

	HasActType    int
	HasAssignee   int
	HasValue      int
	ValueSum      float64
	ClassifiedPct int
}

// ListRollup groups existed cards by the list they occupied at the end of the window.
type ListRollup struct {
	List         ListPlacement
	Cards        int
	OpenCards    int
	WithActType  int
	WithAssignee int
	ValueSum     float64
}

// ActTypeCount is the number of cards of one act type.
type ActTypeCount struct {
	ActType string
	Count   int
	Pct     int
}

// CreatedListCount is the number of cards created in the window into one list.
type CreatedListCount struct {
	List  ListPlacement
	Count int
}

// BreakdownRow is one cell of the list x act type cross-tabulation.
type BreakdownRow struct {
	List    ListPlacement
	ActType string
	Count   int
}

// PivotRow is one list name with a count per observed act type.
type PivotRow struct {
	List            ListPlacement
	Counts          map[string]int
	TotalCards      int
	ClassifiedTotal int
	ClassifiedPct   int
}

// SummaryRow holds the flow counters of one list.
type SummaryRow struct {
	List       ListPlacement
	Existed    int
	Created    int
	Archived   int
	Concluded  int
	OpenAtEnd  int
	InProgress int
	SharePct   int
}

// OpenCard is a card still open at the end of the window.
type OpenCard struct {
	CardID       string
	List         ListPlacement
	ActType      string
	ActValue     *float64
	AssigneeName string
	Concluded    bool
}

// Report is the full set of window views.
type Report struct {
	Overall         Overall
	Lists           []ListRollup
	ActTypes        []ActTypeCount
	CreatedActTypes []ActTypeCount
	CreatedByList   []CreatedListCount
	Breakdown       []BreakdownRow
	PivotColumns    []string
	Pivot           []PivotRow
	Summary         []SummaryRow
	OpenCards       []OpenCard
}
