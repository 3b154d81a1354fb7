package xio

import "fmt"

// Future is a single-assignment result cell that tasks can suspend on via
// Await. Futures need no locking: the suspension protocol guarantees only
// the single scheduling goroutine ever observes or mutates one at a time
// (spec §9 "Futures without thread safety").
type Future[T any] struct {
	done  bool
	value T
	err   error
}

// NewFuture creates a Future with neither a value nor a failure set.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Done reports whether the future has been resolved, either with a value
// or with a failure.
func (f *Future[T]) Done() bool {
	return f.done
}

// SetResult resolves the future with a value.
//
// Calling SetResult or SetError on an already-done future is
// implementation-defined by spec §9 ("Open questions"); this implementation
// makes it idempotent: the first call wins and later calls are silently
// ignored, so callers racing to resolve a future (e.g. a TaskGroup cancelling
// siblings) never panic.
func (f *Future[T]) SetResult(value T) {
	if f.done {
		return
	}
	f.done = true
	f.value = value
}

// SetError resolves the future with a failure. See SetResult for the
// double-set policy.
func (f *Future[T]) SetError(err error) {
	if f.done {
		return
	}
	if err == nil {
		err = fmt.Errorf("xio: SetError called with nil error")
	}
	f.done = true
	f.err = err
}

// result returns the stored value/error pair. Callers must check Done()
// first; calling this on a future that is not yet done returns the zero
// value and a nil error.
func (f *Future[T]) result() (T, error) {
	return f.value, f.err
}

// asCondition returns a Condition that is fulfilled exactly when f becomes
// done, for use by Await and by hand-rolled suspensions that also want to
// race against a future.
func (f *Future[T]) asCondition() Condition {
	return Condition{Futures: []doneChecker{f}}
}
