package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// maxExtensions bounds how many times a hit may slide an entry's expiry.
const maxExtensions = 6

type entry struct {
	Value       any
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

// Memory is an in-process cache whose entries slide their expiry on access.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemory creates an empty cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// GetValue returns a cached value, extending its TTL on hit.
func (m *Memory) GetValue(key string) (any, bool) {
	return m.lookup(key, true)
}

func (m *Memory) lookup(key string, slide bool) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}

	now := m.now()
	if now.After(e.Expiration) {
		delete(m.entries, key)
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	if slide && e.AccessCount < maxExtensions {
		e.Expiration = now.Add(e.OriginalTTL)
		e.AccessCount++
		log.Trace().Str("key", key).Int("count", e.AccessCount).Msg("Extended cache TTL")
	}

	return e.Value, true
}

// SetValue stores a value for ttl.
func (m *Memory) SetValue(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &entry{
		Value:       value,
		Expiration:  m.now().Add(ttl),
		OriginalTTL: ttl,
		AccessCount: 1,
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Added to cache")
}

// Len returns the number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Get implements Store. Response entries expire at a fixed deadline; hits never extend them.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lookup(key, false)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.SetValue(key, value, ttl)
	return nil
}
