package eventlog

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw  string
		want Action
	}{
		{"create", ActionCreate},
		{"createCard", ActionCreate},
		{"copyCard", ActionCreate},
		{"convertToCardFromCheckItem", ActionCreate},
		{"move", ActionMove},
		{"archive", ActionArchive},
		{"unarchive", ActionUnarchive},
		{"delete", ActionDelete},
		{"commentCard", ActionIgnored},
		{"Create", ActionIgnored}, // Case-sensitive
		{"", ActionIgnored},
	}

	for _, tt := range tests {
		if got := ParseAction(tt.raw); got != tt.want {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCardEvent_Predicates(t *testing.T) {
	tests := []struct {
		name      string
		event     CardEvent
		bare      bool
		targeting bool
	}{
		{"bare create", CardEvent{ActionType: "create", ToListID: "l1"}, true, true},
		{"create alias", CardEvent{ActionType: "copyCard", ToListID: "l1"}, false, true},
		{"create without list", CardEvent{ActionType: "create"}, true, false},
		{"move", CardEvent{ActionType: "move", ToListID: "l2"}, false, true},
		{"unarchive", CardEvent{ActionType: "unarchive", ToListID: "l2"}, false, true},
		{"archive keeps list", CardEvent{ActionType: "archive", ToListID: "l2"}, false, false},
		{"ignored", CardEvent{ActionType: "updateCard", ToListID: "l2"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsBareCreate(); got != tt.bare {
				t.Errorf("IsBareCreate() = %v, want %v", got, tt.bare)
			}
			if got := tt.event.TargetsList(); got != tt.targeting {
				t.Errorf("TargetsList() = %v, want %v", got, tt.targeting)
			}
		})
	}
}
