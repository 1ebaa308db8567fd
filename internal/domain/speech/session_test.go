package speech

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSessions(maxOpen int, idle time.Duration) (*Sessions, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 21, 9, 0, 0, 0, time.UTC)}
	r := NewSessions(SessionLimits{ClipCapacity: 2, MaxOpen: maxOpen, IdleTTL: idle})
	r.now = clock.now
	return r, clock
}

func TestSessionsEvictLeastRecentlyUsedAtCap(t *testing.T) {
	r, clock := newTestSessions(3, time.Hour)

	a := r.Open()
	clock.advance(time.Second)
	b := r.Open()
	clock.advance(time.Second)
	c := r.Open()
	clock.advance(time.Second)

	_, ok := r.Get(a.ID)
	require.True(t, ok)
	clock.advance(time.Second)

	d := r.Open()
	require.Equal(t, 3, r.Count())
	_, ok = r.Get(b.ID)
	require.False(t, ok, "least recently used session is evicted")
	for _, s := range []*Session{a, c, d} {
		_, ok := r.Get(s.ID)
		require.True(t, ok)
	}
}

func TestSessionsManyOpensStayBounded(t *testing.T) {
	r, clock := newTestSessions(100, time.Hour)
	for i := 0; i < 10000; i++ {
		r.Open()
		clock.advance(time.Millisecond)
	}
	require.Equal(t, 100, r.Count())
}

func TestSessionsExpireWhenIdle(t *testing.T) {
	r, clock := newTestSessions(10, time.Minute)

	idle := r.Open()
	active := r.Open()

	clock.advance(40 * time.Second)
	_, ok := r.Get(active.ID)
	require.True(t, ok)

	clock.advance(40 * time.Second)
	_, ok = r.Get(idle.ID)
	require.False(t, ok, "idle past the ttl")
	_, ok = r.Get(active.ID)
	require.True(t, ok, "use refreshes the idle timer")
}

func TestSessionsOpenSweepsIdle(t *testing.T) {
	r, clock := newTestSessions(10, time.Minute)
	for i := 0; i < 5; i++ {
		r.Open()
	}
	clock.advance(2 * time.Minute)

	fresh := r.Open()
	require.Equal(t, 1, r.Count(), fmt.Sprintf("only %s should remain", fresh.ID))
	require.False(t, r.Close("missing"))
	require.True(t, r.Close(fresh.ID))
	require.Zero(t, r.Count())
}
