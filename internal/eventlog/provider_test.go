package eventlog

import (
	"context"
	"errors"
	"testing"
	"time"
)

type pagedSource struct {
	events []CardEvent
	failAt int // offset that fails; -1 never
	calls  []int
}

func (p *pagedSource) FetchEventPage(_ context.Context, to time.Time, offset, limit int) ([]CardEvent, error) {
	p.calls = append(p.calls, offset)
	if offset == p.failAt {
		return nil, errors.New("connection reset")
	}
	var upto []CardEvent
	for _, e := range p.events {
		if !e.OccurredAt.After(to) {
			upto = append(upto, e)
		}
	}
	if offset >= len(upto) {
		return nil, nil
	}
	end := offset + limit
	if end > len(upto) {
		end = len(upto)
	}
	return upto[offset:end], nil
}

func makeEvents(n int) []CardEvent {
	out := make([]CardEvent, n)
	for i := range out {
		out[i] = CardEvent{ID: int64(i), CardID: "c", ActionType: "move", OccurredAt: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func TestLogProvider_FetchUntil(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantCalls int
	}{
		{"empty log", 0, 3, 1},
		{"short single page", 2, 3, 1},
		{"exact multiple needs trailing empty page", 6, 3, 3},
		{"partial last page", 7, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &pagedSource{events: makeEvents(tt.total), failAt: -1}
			got, err := NewLogProvider(src, tt.pageSize).FetchUntil(context.Background(), base.Add(24*time.Hour))
			if err != nil {
				t.Fatalf("FetchUntil failed: %v", err)
			}
			if len(got) != tt.total {
				t.Errorf("expected %d events, got %d", tt.total, len(got))
			}
			if len(src.calls) != tt.wantCalls {
				t.Errorf("expected %d page calls, got %d (%v)", tt.wantCalls, len(src.calls), src.calls)
			}
		})
	}
}

func TestLogProvider_RespectsUpperBound(t *testing.T) {
	src := &pagedSource{events: makeEvents(10), failAt: -1}
	got, err := NewLogProvider(src, 4).FetchUntil(context.Background(), base.Add(4*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Errorf("expected events up to and including the bound, got %d", len(got))
	}
}

func TestLogProvider_PageFailureIsTotal(t *testing.T) {
	src := &pagedSource{events: makeEvents(10), failAt: 4}
	got, err := NewLogProvider(src, 4).FetchUntil(context.Background(), base.Add(time.Hour))
	if err == nil {
		t.Fatal("expected error from failing page")
	}
	if got != nil {
		t.Errorf("expected no partial log, got %d events", len(got))
	}
}

func TestLogProvider_DefaultPageSize(t *testing.T) {
	if p := NewLogProvider(&pagedSource{}, 0); p.pageSize != DefaultPageSize {
		t.Errorf("expected default page size, got %d", p.pageSize)
	}
}
