package xio

import "time"

// Selector is a thin wrapper over the host's I/O readiness mechanism: given
// a Condition, it blocks up to the Condition's deadline and returns which
// file descriptors became ready (spec §4.2 "Readiness Selector").
//
// Unlike the teacher's persistent-registration FastPoller (RegisterFD /
// UnregisterFD / ModifyFD against a long-lived reactor), a Selector here
// registers a fresh (fd, mask) set on every Select call: spec §3 says
// Conditions are "ephemeral, reconstructed on each loop iteration", so
// there is nothing for the selector to persist between calls.
type Selector interface {
	// Select blocks until any fd in cond.Files becomes ready for its
	// requested mask or until cond.Deadline, whichever happens first. A
	// Condition with no fds and no deadline is not waited on: the platform
	// Selectors return at once with an empty Observation.
	Select(cond Condition, now time.Time) (Observation, error)
	// Close releases the host resources backing the selector (e.g. the
	// epoll or kqueue descriptor).
	Close() error
}

// blockingTimeout computes the max(0, deadline-now) duration a Select call
// should block for, returning (0, true) when cond carries no fds and no
// deadline at all — meaning there is nothing to wait on, so the caller
// should not block the selector syscall. A Condition that waits only on
// futures takes this path too, since Select does not watch futures.
func blockingTimeout(cond Condition, now time.Time) (d time.Duration, noWait bool) {
	if !cond.HasDeadline() {
		if len(cond.Files) == 0 {
			return 0, true
		}
		return -1, false // block indefinitely
	}
	remaining := cond.Deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, false
}
