package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestIPLimiter_SweepsIdleVisitorsOncePerTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := newIPLimiter(10, 5, clock.now)

	l.allow("10.0.0.1")
	clock.advance(5 * time.Minute)
	l.allow("10.0.0.2")
	assert.Len(t, l.visitors, 2)

	// Past the TTL since the last sweep: only the idle visitor goes.
	clock.advance(6 * time.Minute)
	l.allow("10.0.0.3")
	assert.Len(t, l.visitors, 2)
	assert.NotContains(t, l.visitors, "10.0.0.1")
	assert.Contains(t, l.visitors, "10.0.0.2")

	// 10.0.0.2 is idle now, but the next sweep is not due yet.
	clock.advance(6 * time.Minute)
	l.allow("10.0.0.4")
	assert.Contains(t, l.visitors, "10.0.0.2")
	assert.Len(t, l.visitors, 3)

	clock.advance(5 * time.Minute)
	l.allow("10.0.0.4")
	assert.NotContains(t, l.visitors, "10.0.0.2")
	assert.NotContains(t, l.visitors, "10.0.0.3")
	assert.Len(t, l.visitors, 1)
}

func TestIPLimiter_NoSweepBeforeTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := newIPLimiter(10, 5, clock.now)

	for i := 0; i < 50; i++ {
		l.allow(string(rune('a'+i%26)) + "-host")
		clock.advance(time.Second)
	}
	assert.Len(t, l.visitors, 26)
	assert.Equal(t, clock.t.Add(-50*time.Second), l.lastSweep)
}
