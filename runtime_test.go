package xio

import (
	"fmt"
	"time"
)

// manualClock is a test-only clock that only advances when told to, so
// deadline-driven scenarios (sleep, timeout) can be exercised without any
// wall-clock waiting.
type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Unix(1700000000, 0)}
}

func (c *manualClock) now() time.Time { return c.t }

// fakeSelector pairs with manualClock: since nothing in these tests
// registers real file descriptors, a Select call has nothing to wait for
// except a deadline, so it just jumps the clock forward to it, the
// discrete-event-simulation idiom for testing a cooperative scheduler
// without real time passing.
type fakeSelector struct {
	clock *manualClock
}

func newFakeSelectorFactory(clock *manualClock) func() (Selector, error) {
	return func() (Selector, error) {
		return &fakeSelector{clock: clock}, nil
	}
}

func (s *fakeSelector) Close() error { return nil }

func (s *fakeSelector) Select(cond Condition, now time.Time) (Observation, error) {
	if len(cond.Files) > 0 {
		return nil, fmt.Errorf("xio: fakeSelector does not support file descriptors")
	}
	if !cond.HasDeadline() {
		return nil, fmt.Errorf("xio: fakeSelector asked to block forever (no deadline, no files)")
	}
	if cond.Deadline.After(s.clock.t) {
		s.clock.t = cond.Deadline
	}
	return Observation{}, nil
}
