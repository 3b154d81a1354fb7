package xio

import (
	"errors"
	"sync/atomic"
	"time"
)

var taskIDCounter atomic.Uint64

func nextTaskID() uint64 {
	return taskIDCounter.Add(1)
}

// resumeInput is what the driver goroutine sends to a suspended task
// goroutine to wake it: either a readiness observation or an injected
// failure (a cancellation, a propagated user failure, or a selector error).
type resumeInput struct {
	obs Observation
	err error
}

// yieldOutput is what a task goroutine sends back to the driver: either the
// next Condition it suspended on, or its terminal outcome.
type yieldOutput struct {
	cond Condition
	done bool
	// result is the boxed T returned by the task's function; only valid
	// when done is true and err is nil.
	result any
	err    error
}

// Ctx is handed to a task's function. It is the only way the function can
// suspend: every method blocks the calling goroutine until the driver
// resumes it, implementing the spec's suspension protocol (§4.1) as a
// goroutine+channel rendezvous rather than a generator (see SPEC_FULL.md §2).
type Ctx struct {
	resumeCh chan resumeInput
	yieldCh  chan yieldOutput
	taskID   uint64
	// clock is inherited from the enclosing Run/TaskGroup rather than read
	// from a package-level singleton, per spec §9 ("the runtime holds no
	// process-wide singletons; run() creates its own scheduler instance").
	clock func() time.Time
	// metrics is likewise inherited down from the Run that created the
	// root task, rather than a global; nil unless [WithMetrics] was used.
	metrics *SchedulerMetrics
}

func (c *Ctx) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now()
}

// suspend yields cond upward and blocks until the driver resumes this
// goroutine, returning whatever observation or injected failure it sent.
func (c *Ctx) suspend(cond Condition) (Observation, error) {
	c.yieldCh <- yieldOutput{cond: cond}
	in := <-c.resumeCh
	return in.obs, in.err
}

// Sleep suspends the calling task for d. It always resumes with an empty
// observation unless the task is cancelled or a failure is injected while
// sleeping (spec §4.1: sleep(s)).
func (c *Ctx) Sleep(d time.Duration) error {
	_, err := c.suspend(Condition{Deadline: c.now().Add(d)})
	return err
}

// Await suspends until f is done, returning its value or re-raising its
// failure (spec §4.1: "await Future").
func Await[T any](c *Ctx, f *Future[T]) (T, error) {
	if !f.Done() {
		_, err := c.suspend(f.asCondition())
		if err != nil {
			var zero T
			return zero, err
		}
	}
	return f.result()
}

// Read suspends until fd is readable, then performs a single non-blocking
// read of up to n bytes (spec §4.1: read(fd,n)). Short reads and EOF (a
// zero-length, nil-error result) are returned as-is; the read is attempted
// exactly once after readiness, never looped internally.
func (c *Ctx) Read(fd int, n int) ([]byte, error) {
	_, err := c.suspend(Condition{Files: map[int]IOMask{fd: READ}})
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	m, rerr := readFD(fd, buf)
	if m < 0 {
		m = 0
	}
	return buf[:m], rerr
}

// Write suspends until fd is writable, then performs a single non-blocking
// write attempt, returning the number of bytes actually written, which may
// be less than len(b) (spec §4.1: write(fd,b)).
func (c *Ctx) Write(fd int, b []byte) (int, error) {
	_, err := c.suspend(Condition{Files: map[int]IOMask{fd: WRITE}})
	if err != nil {
		return 0, err
	}
	return writeFD(fd, b)
}

// runnable is the type-erased view of a Task that TaskGroup and the root
// driver operate on, so a group can hold children of differing result
// types.
type runnable interface {
	condition() Condition
	// resume advances the task per in, returning true once it has
	// terminated (normally, via cancellation, or via failure).
	resume(in resumeInput, now time.Time) bool
	// outcome returns the failure to surface to the owner, or nil if the
	// task completed normally or was cancelled (both are "no failure" per
	// spec §4.3). Only meaningful once resume has returned true.
	outcome() error
	cancel()
	terminated() bool
	taskID() uint64
}

// Task drives one suspendable computation through its lifetime: it holds
// the computation's current Condition, advances it on resume, injects
// cancellation, and propagates termination (spec §3 "Task<T>").
type Task[T any] struct {
	id  uint64
	fn  func(ctx *Ctx) (T, error)
	ctx *Ctx

	resumeCh chan resumeInput
	yieldCh  chan yieldOutput

	started  bool
	done     bool
	cond     Condition
	hasCond  bool
	cancelPending bool

	result  T
	failure error // non-nil only for a failure that must surface to the owner
}

// NewTask creates a Task around fn without starting it; fn begins running
// on its own goroutine the first time the Task is resumed (directly by
// [Run] for a root task, or by a [TaskGroup] for a child).
func NewTask[T any](fn func(ctx *Ctx) (T, error)) *Task[T] {
	return newTaskWithClock(fn, time.Now, nil)
}

func newTaskWithClock[T any](fn func(ctx *Ctx) (T, error), clock func() time.Time, metrics *SchedulerMetrics) *Task[T] {
	t := &Task[T]{
		id:       nextTaskID(),
		fn:       fn,
		resumeCh: make(chan resumeInput),
		yieldCh:  make(chan yieldOutput),
	}
	t.ctx = &Ctx{resumeCh: t.resumeCh, yieldCh: t.yieldCh, taskID: t.id, clock: clock, metrics: metrics}
	return t
}

// Cancel requests cooperative termination: it sets cancel_pending and
// clears the task's current Condition so it is immediately runnable and
// will receive a cancellation failure on its next resume (spec §4.3
// "cancel()"). Calling Cancel on an already-terminated task is a no-op.
func (t *Task[T]) Cancel() {
	t.cancel()
}

func (t *Task[T]) cancel() {
	if t.done {
		return
	}
	t.cancelPending = true
	t.hasCond = false
}

// Condition returns the task's current wake Condition, or the "runnable
// immediately" sentinel if it hasn't stepped yet or was just cancelled.
func (t *Task[T]) Condition() Condition {
	return t.condition()
}

func (t *Task[T]) condition() Condition {
	if !t.hasCond {
		return immediate()
	}
	return t.cond
}

func (t *Task[T]) terminated() bool { return t.done }
func (t *Task[T]) taskID() uint64   { return t.id }

// TaskHandle is the type-erased public view of a Task exposed by
// [TaskGroup.Tasks], so a scope's child list can be inspected without
// naming every child's result type.
type TaskHandle interface {
	ID() uint64
	Cancel()
	Terminated() bool
}

// ID returns the task's unique, process-local identifier (used only for
// diagnostics and log correlation; it carries no ordering guarantee).
func (t *Task[T]) ID() uint64 { return t.id }

// Terminated reports whether the task has finished (normally, via
// cancellation, or via failure).
func (t *Task[T]) Terminated() bool { return t.done }

func (t *Task[T]) outcome() error {
	return t.failure
}

// Result returns the task's stored result and whether it completed
// normally (false if it was cancelled, failed, or has not terminated yet).
func (t *Task[T]) Result() (T, bool) {
	var zero T
	if !t.done || t.failure != nil {
		return zero, false
	}
	return t.result, true
}

func (t *Task[T]) start() {
	t.started = true
	logTaskStarted(t.id)
	t.ctx.metrics.observeTaskStarted()
	go t.goroutineMain()
}

func (t *Task[T]) goroutineMain() {
	defer func() {
		if r := recover(); r != nil {
			t.yieldCh <- yieldOutput{done: true, err: PanicError{Value: r}}
		}
	}()
	val, err := t.fn(t.ctx)
	t.yieldCh <- yieldOutput{done: true, result: val, err: err}
}

// resume implements the Task driver per spec §4.3, in priority order:
//  1. cancel_pending: inject cancellation.
//  2. in.err != nil: inject the propagated failure.
//  3. not yet started: step with no value.
//  4. condition fulfilled by in.obs: step with the observation.
//  5. otherwise: not yet runnable, no-op.
func (t *Task[T]) resume(in resumeInput, now time.Time) bool {
	if t.done {
		return true
	}

	switch {
	case t.cancelPending:
		t.cancelPending = false
		t.deliver(resumeInput{err: Cancelled})
	case in.err != nil:
		t.deliver(in)
	case !t.started:
		t.start()
		t.awaitYield()
	case t.hasCond && t.cond.Fulfilled(in.obs, now):
		t.deliver(resumeInput{obs: in.obs})
	default:
		return false
	}
	return t.done
}

// deliver sends in to a suspended task goroutine and waits for its next
// yield or termination. A task that has never started has no suspension
// point to deliver a failure into, so a failure delivered before the first
// step terminates the task directly without ever running its function —
// the same outcome cancelling an unstarted coroutine has before its first
// send/throw in a generator-based scheduler.
func (t *Task[T]) deliver(in resumeInput) {
	if !t.started {
		if in.err != nil {
			t.terminateWithoutRunning(in.err)
			return
		}
		t.start()
		t.awaitYield()
		return
	}
	t.resumeCh <- in
	t.awaitYield()
}

func (t *Task[T]) terminateWithoutRunning(err error) {
	t.done = true
	t.hasCond = false
	if !errors.Is(err, Cancelled) {
		t.failure = err
		logTaskFailed(t.id, err)
		t.ctx.metrics.observeTaskFailed()
	}
}

func (t *Task[T]) awaitYield() {
	out := <-t.yieldCh
	if !out.done {
		t.hasCond = true
		t.cond = out.cond
		return
	}
	t.done = true
	t.hasCond = false
	switch {
	case out.err == nil:
		if v, ok := out.result.(T); ok {
			t.result = v
		}
	case errors.Is(out.err, Cancelled):
		// Cancellation terminates silently: no failure surfaces (spec §4.3).
	default:
		t.failure = out.err
		logTaskFailed(t.id, out.err)
		t.ctx.metrics.observeTaskFailed()
	}
}
