package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsValueWhileFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(func() time.Time { return now })

	c.Set("u1:dashboard:today:2025-06-01", "payload", 5*time.Minute)

	v, ok := c.Get("u1:dashboard:today:2025-06-01")
	assert.True(t, ok)
	assert.Equal(t, "payload", v)

	// One nanosecond before expiry is still a hit.
	now = now.Add(5*time.Minute - time.Nanosecond)
	_, ok = c.Get("u1:dashboard:today:2025-06-01")
	assert.True(t, ok)
}

func TestGetEvictsOnExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(func() time.Time { return now })

	c.Set("k", 42, time.Minute)
	now = now.Add(time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be deleted by the read")
}

func TestSetOverwrites(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(func() time.Time { return now })

	c.Set("k", "old", time.Minute)
	c.Set("k", "new", time.Hour)

	now = now.Add(30 * time.Minute)
	v, ok := c.Get("k")
	assert.True(t, ok, "second Set should have extended the expiry")
	assert.Equal(t, "new", v)
}

func TestClearUserOnlyTouchesPrefix(t *testing.T) {
	c := New(nil)
	c.Set("u1:dashboard:today:2025-06-01", 1, time.Hour)
	c.Set("u1:dashboard:week:2025-06-01", 2, time.Hour)
	c.Set("u2:dashboard:today:2025-06-01", 3, time.Hour)
	c.Set("u10:dashboard:today:2025-06-01", 4, time.Hour)

	c.ClearUser("u1")

	_, ok := c.Get("u1:dashboard:today:2025-06-01")
	assert.False(t, ok)
	_, ok = c.Get("u1:dashboard:week:2025-06-01")
	assert.False(t, ok)
	_, ok = c.Get("u2:dashboard:today:2025-06-01")
	assert.True(t, ok)
	// "u10" shares the leading characters but not the "u1:" prefix.
	_, ok = c.Get("u10:dashboard:today:2025-06-01")
	assert.True(t, ok)
}

func TestPruneSweepsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(func() time.Time { return now })

	c.Set("fresh", 1, time.Hour)
	c.Set("stale", 2, time.Minute)

	now = now.Add(10 * time.Minute)
	c.Prune()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}
