package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventStore provides thread-safe, chronological storage for CardEvents.
type EventStore struct {
	mu   sync.RWMutex
	logs map[string][]CardEvent // Partitioned by board ID
}

// NewEventStore creates a new empty EventStore.
func NewEventStore() *EventStore {
	return &EventStore{
		logs: make(map[string][]CardEvent),
	}
}

// Append adds new events to the log for a given board, keeping chronological order and dropping duplicates.
// Events sharing a timestamp keep their arrival order.
func (s *EventStore) Append(boardID string, events []CardEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[boardID]

	existing := make(map[string]bool, len(log))
	for _, e := range log {
		existing[e.identity()] = true
	}

	newCount := 0
	for _, e := range events {
		id := e.identity()
		if existing[id] {
			continue
		}
		existing[id] = true
		log = append(log, e)
		newCount++
	}

	if newCount == 0 {
		return
	}

	sort.SliceStable(log, func(i, j int) bool {
		return log[i].OccurredAt.Before(log[j].OccurredAt)
	})

	s.logs[boardID] = log
}

// Load reads events from a JSONL cache file for the given board.
func (s *EventStore) Load(cacheDir string, boardID string) error {
	path := filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", boardID))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No cache yet, not an error
		}
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer file.Close()

	var events []CardEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e CardEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Warn().Err(err).Str("board", boardID).Msg("Skipping invalid JSON line in cache")
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading cache: %w", err)
	}

	log.Info().Str("board", boardID).Int("count", len(events)).Msg("Loaded events from cache")
	s.Append(boardID, events)
	return nil
}

// Save persists events for the given board to a JSONL cache file.
func (s *EventStore) Save(cacheDir string, boardID string) error {
	s.mu.RLock()
	logData, ok := s.logs[boardID]
	s.mu.RUnlock()

	if !ok || len(logData) == 0 {
		return nil
	}

	path := filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", boardID))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, e := range logData {
		if err := encoder.Encode(e); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	log.Info().Str("board", boardID).Int("count", len(logData)).Msg("Events saved to cache")
	return nil
}

// Count returns the number of events in the store for a board.
func (s *EventStore) Count(boardID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[boardID])
}

// GetEventsUntil returns a copy of the events that occurred at or before end.
func (s *EventStore) GetEventsUntil(boardID string, end time.Time) []CardEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []CardEvent
	for _, e := range s.logs[boardID] {
		if e.OccurredAt.After(end) {
			break // sorted
		}
		result = append(result, e)
	}
	return result
}

// Source exposes one board of the store as a paged event Source.
func (s *EventStore) Source(boardID string) Source {
	return &storeSource{store: s, boardID: boardID}
}

type storeSource struct {
	store   *EventStore
	boardID string
}

func (ss *storeSource) FetchEventPage(ctx context.Context, to time.Time, offset, limit int) ([]CardEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	events := ss.store.GetEventsUntil(ss.boardID, to)
	if offset >= len(events) {
		return nil, nil
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end], nil
}
