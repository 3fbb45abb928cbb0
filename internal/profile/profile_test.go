package profile

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDisplayNameCaches(t *testing.T) {
	calls := 0
	c := NewCache(func(_ context.Context, userID string) (string, error) {
		calls++
		return "Alice", nil
	})
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		name, err := c.DisplayName(context.Background(), "u1")
		if err != nil || name != "Alice" {
			t.Fatalf("DisplayName: %q, %v", name, err)
		}
	}
	if calls != 1 {
		t.Errorf("fetch calls: %d, want 1", calls)
	}

	// Past the TTL the entry is refetched.
	now = now.Add(defaultTTL + time.Minute)
	if _, err := c.DisplayName(context.Background(), "u1"); err != nil {
		t.Fatalf("DisplayName: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch calls after expiry: %d, want 2", calls)
	}
}

func TestDisplayNameErrorNotCached(t *testing.T) {
	calls := 0
	boom := errors.New("api down")
	c := NewCache(func(_ context.Context, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "Bob", nil
	})

	if _, err := c.DisplayName(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("first call: %v", err)
	}
	name, err := c.DisplayName(context.Background(), "u1")
	if err != nil || name != "Bob" {
		t.Fatalf("retry: %q, %v", name, err)
	}
}
