package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"notary-dash/internal/board"
)

type fakeSource struct {
	mu        sync.Mutex
	failRich  bool
	failBase  bool
	failChunk int // fail only calls whose first id equals this index, -1 disables
	calls     map[board.ColumnSet]int
	maxChunk  int
}

func newFakeSource() *fakeSource {
	return &fakeSource{failChunk: -1, calls: make(map[board.ColumnSet]int)}
}

func (f *fakeSource) FetchDetails(ctx context.Context, ids []string, cols board.ColumnSet) ([]board.CardDetail, error) {
	f.mu.Lock()
	f.calls[cols]++
	if len(ids) > f.maxChunk {
		f.maxChunk = len(ids)
	}
	f.mu.Unlock()

	if cols == board.ColumnsRich && f.failRich {
		return nil, errors.New("column cards.created_list_id does not exist")
	}
	if cols == board.ColumnsBase && f.failBase {
		return nil, errors.New("upstream unavailable")
	}
	if f.failChunk >= 0 && ids[0] == fmt.Sprintf("card-%03d", f.failChunk) {
		return nil, errors.New("chunk failed")
	}

	out := make([]board.CardDetail, 0, len(ids))
	for _, id := range ids {
		d := board.CardDetail{ID: id, ActType: "Ata"}
		if cols == board.ColumnsRich {
			d.CreatedListID = "l1"
		}
		out = append(out, d)
	}
	return out, nil
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("card-%03d", i)
	}
	return out
}

func TestEnrich_ChunksAndMerges(t *testing.T) {
	src := newFakeSource()
	e := NewEnricher(src, 10, 3)

	got, err := e.Enrich(context.Background(), ids(45))
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if len(got) != 45 {
		t.Errorf("expected 45 details, got %d", len(got))
	}
	if src.calls[board.ColumnsRich] != 5 {
		t.Errorf("expected 5 chunk calls, got %d", src.calls[board.ColumnsRich])
	}
	if src.maxChunk > 10 {
		t.Errorf("chunk size exceeded: %d", src.maxChunk)
	}
	if got["card-007"].CreatedListID != "l1" {
		t.Error("rich columns should carry provenance")
	}
}

func TestEnrich_FallsBackToBaseColumns(t *testing.T) {
	src := newFakeSource()
	src.failRich = true
	e := NewEnricher(src, 10, 2)

	got, err := e.Enrich(context.Background(), ids(15))
	if err != nil {
		t.Fatalf("expected fallback to succeed: %v", err)
	}
	if len(got) != 15 {
		t.Errorf("expected 15 details, got %d", len(got))
	}
	if got["card-001"].CreatedListID != "" {
		t.Error("base columns must not carry provenance")
	}
	if src.calls[board.ColumnsBase] != 2 {
		t.Errorf("expected the whole lookup to be retried (2 chunks), got %d", src.calls[board.ColumnsBase])
	}
}

func TestEnrich_PartialRichFailureRetriesEverything(t *testing.T) {
	src := newFakeSource()
	src.failChunk = 10
	e := NewEnricher(src, 10, 1)

	// Chunk starting at card-010 fails for both column sets.
	_, err := e.Enrich(context.Background(), ids(25))
	if err == nil {
		t.Fatal("expected failure when a chunk fails in both modes")
	}
}

func TestEnrich_BothModesFail(t *testing.T) {
	src := newFakeSource()
	src.failRich = true
	src.failBase = true
	e := NewEnricher(src, 10, 2)

	if _, err := e.Enrich(context.Background(), ids(3)); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnrich_EmptyAndDuplicates(t *testing.T) {
	src := newFakeSource()
	e := NewEnricher(src, 0, 0)

	got, err := e.Enrich(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty input: got %v, %v", got, err)
	}
	if src.calls[board.ColumnsRich] != 0 {
		t.Error("no lookup expected for empty input")
	}

	got, err = e.Enrich(context.Background(), []string{"b", "a", "b", ""})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 unique cards, got %d", len(got))
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		size   int
		chunks int
	}{
		{"Empty", 0, 5, 0},
		{"Exact", 10, 5, 2},
		{"Remainder", 11, 5, 3},
		{"DefaultSize", 3, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Chunk(ids(tt.n), tt.size)); got != tt.chunks {
				t.Errorf("Chunk(%d, %d) = %d chunks, want %d", tt.n, tt.size, got, tt.chunks)
			}
		})
	}
}
