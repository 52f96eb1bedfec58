package framework

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Time() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestIntervalTimer(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	timer := NewIntervalTimer(clock)
	interval := 500 * time.Millisecond

	require.False(t, timer.Expired(interval))
	clock.advance(499 * time.Millisecond)
	require.False(t, timer.Expired(interval))
	clock.advance(time.Millisecond)
	require.True(t, timer.Expired(interval))
	// re-armed on firing
	require.False(t, timer.Expired(interval))
	clock.advance(400 * time.Millisecond)
	require.False(t, timer.Expired(interval))
	clock.advance(100 * time.Millisecond)
	require.True(t, timer.Expired(interval))
}

func TestIntervalTimerRestart(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	timer := NewIntervalTimer(clock)
	clock.advance(400 * time.Millisecond)
	timer.Restart()
	clock.advance(400 * time.Millisecond)
	require.False(t, timer.Expired(500*time.Millisecond))
	clock.advance(100 * time.Millisecond)
	require.True(t, timer.Expired(500*time.Millisecond))
}

func TestIntervalTimerWallClock(t *testing.T) {
	timer := NewIntervalTimer(nil)
	require.True(t, timer.Expired(0))
	require.False(t, timer.Expired(time.Hour))
}
