package stats

import (
	"testing"
	"time"

	"notary-dash/internal/eventlog"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 3, 4, hour, min, 0, 0, time.UTC)
}

func testWindow() Window {
	return Window{From: at(10, 0), To: at(12, 0)}
}

func TestReduceCard_CreatedBeforeFromThenConcluded(t *testing.T) {
	events := []eventlog.CardEvent{
		{CardID: "c1", ActionType: "create", OccurredAt: at(9, 0), ToListID: "l1", ToListName: "Triagem"},
		{CardID: "c1", ActionType: "move", OccurredAt: at(11, 0), FromListID: "l1", ToListID: "l9", ToListName: "Concluídos"},
	}

	s := ReduceCard(events, testWindow(), DefaultConfig())

	if !s.SawEventBeforeFrom {
		t.Fatal("expected the 09:00 create to be seen before from")
	}
	if !s.OpenAtFrom {
		t.Error("card created at 09:00 should be open at from")
	}
	if !s.ExistedInWindow {
		t.Error("expected existed_in_window")
	}
	if !s.ConcludedInWindow {
		t.Error("expected concluded_in_window from the move into Concluídos")
	}
	if s.CreatedInWindow || s.OpenedInWindow {
		t.Error("create happened before from and must not count as in-window")
	}
	if !s.OpenAtTo {
		t.Error("expected open_at_to")
	}
	if s.ListAtTo == nil || s.ListAtTo.ID != "l9" {
		t.Errorf("list_at_to = %+v, want l9", s.ListAtTo)
	}
}

func TestReduceCard_SingleArchiveInfersPreexisting(t *testing.T) {
	events := []eventlog.CardEvent{
		{CardID: "c2", ActionType: "archive", OccurredAt: at(11, 0)},
	}

	s := ReduceCard(events, testWindow(), DefaultConfig())

	if s.SawEventBeforeFrom {
		t.Fatal("no event precedes from")
	}
	if !s.OpenAtFrom {
		t.Error("a first non-create event implies the card pre-existed open")
	}
	if !s.ArchivedInWindow {
		t.Error("expected archived_in_window")
	}
	if !s.ExistedInWindow {
		t.Error("expected existed_in_window")
	}
	if s.OpenAtTo {
		t.Error("expected closed at to")
	}
	if s.ListAtTo != nil {
		t.Errorf("expected no list, got %+v", s.ListAtTo)
	}
}

func TestReduceCard_BoundaryInference(t *testing.T) {
	tests := []struct {
		name       string
		actionType string
		openAtFrom bool
	}{
		{"BareCreate", "create", false},
		{"CreateCardSubtype", "createCard", true},
		{"CopyCard", "copyCard", true},
		{"Move", "move", true},
		{"Unarchive", "unarchive", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []eventlog.CardEvent{
				{CardID: "c", ActionType: tt.actionType, OccurredAt: at(10, 30), ToListID: "l1", ToListName: "Em andamento"},
			}
			s := ReduceCard(events, testWindow(), DefaultConfig())
			if s.OpenAtFrom != tt.openAtFrom {
				t.Errorf("OpenAtFrom = %v, want %v", s.OpenAtFrom, tt.openAtFrom)
			}
			if !s.ExistedInWindow {
				t.Error("every card with an in-window event here should exist in the window")
			}
		})
	}
}

func TestReduceCard_CreateClassInWindow(t *testing.T) {
	for _, raw := range []string{"create", "createCard", "copyCard", "convertToCardFromCheckItem"} {
		t.Run(raw, func(t *testing.T) {
			events := []eventlog.CardEvent{
				{CardID: "c", ActionType: raw, OccurredAt: at(10, 0), ToListID: "l1", ToListName: "Triagem"},
			}
			s := ReduceCard(events, testWindow(), DefaultConfig())
			if !s.CreatedInWindow || !s.OpenedInWindow {
				t.Errorf("%s at from should count as created and opened in window", raw)
			}
			if s.CreatedList == nil || s.CreatedList.ID != "l1" {
				t.Errorf("CreatedList = %+v, want l1", s.CreatedList)
			}
			if !s.OpenAtTo {
				t.Error("expected open at to")
			}
		})
	}
}

func TestReduceCard_LastEventBeforeFromWins(t *testing.T) {
	events := []eventlog.CardEvent{
		{CardID: "c", ActionType: "create", OccurredAt: at(8, 0), ToListID: "l1"},
		{CardID: "c", ActionType: "archive", OccurredAt: at(9, 0)},
	}

	s := ReduceCard(events, testWindow(), DefaultConfig())

	if s.OpenAtFrom {
		t.Error("card archived at 09:00 must be closed at from")
	}
	if s.ExistedInWindow {
		t.Error("closed card with no in-window reopen did not exist in window")
	}
	if s.OpenAtTo {
		t.Error("expected closed at to")
	}
}

func TestReduceCard_UnarchiveReopens(t *testing.T) {
	events := []eventlog.CardEvent{
		{CardID: "c", ActionType: "create", OccurredAt: at(8, 0), ToListID: "l1"},
		{CardID: "c", ActionType: "archive", OccurredAt: at(9, 0)},
		{CardID: "c", ActionType: "unarchive", OccurredAt: at(11, 0), ToListID: "l2", ToListName: "Conclusão"},
		{CardID: "c", ActionType: "delete", OccurredAt: at(11, 30)},
	}

	s := ReduceCard(events, testWindow(), DefaultConfig())

	if !s.OpenedInWindow || !s.ExistedInWindow {
		t.Error("unarchive inside the window should open the card")
	}
	if !s.ConcludedInWindow {
		t.Error("unarchive into a concluded list should count as concluded")
	}
	if !s.ArchivedInWindow {
		t.Error("delete should count as archived")
	}
	if s.OpenAtTo {
		t.Error("expected closed at to after delete")
	}
	if s.CreatedInWindow {
		t.Error("no create inside the window")
	}
}

func TestReduceCard_IgnoresUnknownAndLateEvents(t *testing.T) {
	events := []eventlog.CardEvent{
		{CardID: "c", ActionType: "commentCard", OccurredAt: at(9, 0)},
		{CardID: "c", ActionType: "create", OccurredAt: at(10, 15), ToListID: "l1"},
		{CardID: "c", ActionType: "archive", OccurredAt: at(13, 0)},
	}

	s := ReduceCard(events, testWindow(), DefaultConfig())

	if s.SawEventBeforeFrom {
		t.Error("ignored action types must not count as history")
	}
	if s.OpenAtFrom {
		t.Error("first replayable event is a bare create")
	}
	if !s.OpenAtTo || s.ArchivedInWindow {
		t.Error("archive after to must be ignored")
	}
}

func TestReduceCard_MoveWithoutTargetKeepsList(t *testing.T) {
	events := []eventlog.CardEvent{
		{CardID: "c", ActionType: "create", OccurredAt: at(10, 0), ToListID: "l1", ToListName: "Triagem"},
		{CardID: "c", ActionType: "move", OccurredAt: at(10, 30)},
	}

	s := ReduceCard(events, testWindow(), DefaultConfig())

	if s.ListAtTo == nil || s.ListAtTo.ID != "l1" {
		t.Errorf("ListAtTo = %+v, want l1", s.ListAtTo)
	}
}

func TestReduceCard_Empty(t *testing.T) {
	s := ReduceCard(nil, testWindow(), DefaultConfig())
	if s.ExistedInWindow || s.OpenAtFrom || s.CardID != "" {
		t.Errorf("empty history should produce a zero summary, got %+v", s)
	}
}

func TestReduceCard_Idempotent(t *testing.T) {
	events := []eventlog.CardEvent{
		{CardID: "c", ActionType: "create", OccurredAt: at(9, 0), ToListID: "l1", ToListName: "Triagem"},
		{CardID: "c", ActionType: "move", OccurredAt: at(10, 30), ToListID: "l2", ToListName: "Minuta"},
		{CardID: "c", ActionType: "archive", OccurredAt: at(11, 0)},
	}

	first := ReduceCard(events, testWindow(), DefaultConfig())
	second := ReduceCard(events, testWindow(), DefaultConfig())

	if first.ExistedInWindow != second.ExistedInWindow ||
		first.OpenAtTo != second.OpenAtTo ||
		first.ArchivedInWindow != second.ArchivedInWindow ||
		*first.ListAtTo != *second.ListAtTo {
		t.Errorf("replay is not idempotent: %+v vs %+v", first, second)
	}
}

func TestReduceCard_TieOrderDoesNotChangeMembership(t *testing.T) {
	a := eventlog.CardEvent{CardID: "c", ActionType: "create", OccurredAt: at(10, 30), ToListID: "l1"}
	b := eventlog.CardEvent{CardID: "c", ActionType: "move", OccurredAt: at(10, 30), ToListID: "l2"}

	s1 := ReduceCard([]eventlog.CardEvent{a, b}, testWindow(), DefaultConfig())
	s2 := ReduceCard([]eventlog.CardEvent{b, a}, testWindow(), DefaultConfig())

	if s1.ExistedInWindow != s2.ExistedInWindow || s1.OpenAtTo != s2.OpenAtTo {
		t.Errorf("tie order changed membership: %+v vs %+v", s1, s2)
	}
}

func TestReduceCard_BoundaryInvariant(t *testing.T) {
	histories := [][]eventlog.CardEvent{
		{{CardID: "a", ActionType: "create", OccurredAt: at(9, 0)}},
		{{CardID: "b", ActionType: "move", OccurredAt: at(12, 0), ToListID: "x"}},
		{{CardID: "c", ActionType: "create", OccurredAt: at(11, 0)}, {CardID: "c", ActionType: "archive", OccurredAt: at(11, 5)}},
		{{CardID: "d", ActionType: "delete", OccurredAt: at(9, 0)}, {CardID: "d", ActionType: "unarchive", OccurredAt: at(12, 0)}},
	}

	for _, h := range histories {
		s := ReduceCard(h, testWindow(), DefaultConfig())
		if s.ExistedInWindow != (s.OpenAtFrom || s.OpenedInWindow) {
			t.Errorf("card %s: existed=%v openAtFrom=%v opened=%v", s.CardID, s.ExistedInWindow, s.OpenAtFrom, s.OpenedInWindow)
		}
	}
}

func TestConfig_IsConcluded(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name string
		want bool
	}{
		{"Concluídos", true},
		{"CONCLUSÃO", true},
		{"Em andamento", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.IsConcluded(tt.name); got != tt.want {
			t.Errorf("IsConcluded(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	custom := Config{ConcludedMarker: "Done"}
	if !custom.IsConcluded("done / delivered") {
		t.Error("custom marker should match case-insensitively")
	}
}
