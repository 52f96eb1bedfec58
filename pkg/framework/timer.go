package framework

import (
	"sync"
	"time"
)

// IntervalTimer is a non-blocking elapsed-time check, polled from a loop
// instead of delivering on a channel.
type IntervalTimer struct {
	Source TimeSource

	start time.Time
	lock  sync.Mutex
}

// NewIntervalTimer creates an armed IntervalTimer.
func NewIntervalTimer(src TimeSource) *IntervalTimer {
	t := &IntervalTimer{Source: src}
	t.Restart()
	return t
}

func (t *IntervalTimer) now() time.Time {
	if t.Source == nil {
		return time.Now()
	}
	return t.Source.Time()
}

// Restart re-arms the timer from now.
func (t *IntervalTimer) Restart() {
	t.lock.Lock()
	t.start = t.now()
	t.lock.Unlock()
}

// Expired reports whether interval elapsed since the timer was armed.
// When it has, the timer is re-armed so it fires once per interval.
func (t *IntervalTimer) Expired(interval time.Duration) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	now := t.now()
	if now.Sub(t.start) < interval {
		return false
	}
	t.start = now
	return true
}
