// Package cache provides the response cache used for closed dashboard windows.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a byte-oriented cache with per-entry TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// WindowKey builds the cache key of a dashboard window.
func WindowKey(from, to time.Time) string {
	return fmt.Sprintf("dashboard:%d:%d", from.UTC().UnixMicro(), to.UTC().UnixMicro())
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
