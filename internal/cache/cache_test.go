package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SlidingExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	m.SetValue("k", 42, time.Minute)

	now = now.Add(50 * time.Second)
	if v, ok := m.GetValue("k"); !ok || v.(int) != 42 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}

	// The hit slid the expiry by another minute.
	now = now.Add(50 * time.Second)
	if _, ok := m.GetValue("k"); !ok {
		t.Fatal("expected hit after sliding extension")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := m.GetValue("k"); ok {
		t.Fatal("expected expiry")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry should be evicted, len=%d", m.Len())
	}
}

func TestMemory_ExtensionsAreBounded(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	m.SetValue("k", "v", time.Minute)
	for i := 0; i < maxExtensions; i++ {
		now = now.Add(30 * time.Second)
		if _, ok := m.GetValue("k"); !ok {
			t.Fatalf("unexpected miss at access %d", i)
		}
	}

	// No more extensions: the entry expires a minute after the last extension.
	now = now.Add(61 * time.Second)
	if _, ok := m.GetValue("k"); ok {
		t.Error("expected expiry once extensions are exhausted")
	}
}

func TestMemory_ByteStore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, ok, _ := m.Get(ctx, "missing"); ok {
		t.Error("expected miss")
	}
	if err := m.Set(ctx, "k", []byte("payload"), time.Minute); err != nil {
		t.Fatal(err)
	}
	b, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || string(b) != "payload" {
		t.Errorf("Get = %q %v %v", b, ok, err)
	}
}

func TestMemory_ByteStoreExpiresAtFixedDeadline(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("payload"), time.Minute)
	for i := 0; i < 3; i++ {
		now = now.Add(15 * time.Second)
		if _, ok, _ := m.Get(ctx, "k"); !ok {
			t.Fatalf("unexpected miss at access %d", i)
		}
	}

	// Hits did not slide the deadline: a minute after Set the entry is gone.
	now = now.Add(16 * time.Second)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("expected expiry at the original deadline")
	}
}

func TestWindowKey(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	to := from.Add(time.Hour)
	if WindowKey(from, to) != WindowKey(from.UTC(), to.UTC()) {
		t.Error("window key must not depend on the time zone")
	}
	if WindowKey(from, to) == WindowKey(from, to.Add(time.Second)) {
		t.Error("different windows must have different keys")
	}
}

func TestNewRedis_InvalidURL(t *testing.T) {
	if _, err := NewRedis("not-a-url"); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	_ = s.Set(context.Background(), "k", []byte("v"), time.Minute)
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Error("Nop must never hit")
	}
}
