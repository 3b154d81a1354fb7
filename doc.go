// Package xio implements a minimal, single-threaded cooperative I/O
// runtime: tasks suspend themselves to wait on readiness, futures, or
// deadlines, and a scheduler drives them to completion one step at a time.
//
// # Architecture
//
// [Run] owns one scheduler instance for its lifetime: a root [Task], a
// [Selector] backed by the host's epoll/kqueue (or a degraded fallback
// elsewhere), and a clock. There is no process-wide state; two concurrent
// Run calls never interact.
//
// A task's function receives a [Ctx], which is the only way it can
// suspend: [Ctx.Sleep], [Await], [Ctx.Read], and [Ctx.Write] all describe a
// [Condition] — the set of file descriptors, futures, and/or a deadline
// that can wake the task — and block until the scheduler resumes it. Each
// task's function runs on its own goroutine, synchronized with the driver
// through a pair of unbuffered channels, so that exactly one of
// {scheduler, task goroutine} is ever running at a time. This gives task
// code an ordinary imperative call stack (no explicit state machine to
// hand-write) while keeping the scheduling itself fully cooperative.
//
// [TaskGroup] implements structured concurrency: [WithGroup] opens a scope
// whose body runs alongside any children attached via [AddTask], and does
// not return until the body and every child have terminated. A failure in
// any participant cancels the rest of the scope and is the one failure
// reported to the caller. [Gather] and [Timeout] are built on top of it.
//
// # Platform support
//
// [Selector] readiness detection uses:
//   - Linux: epoll
//   - Darwin: kqueue
//   - everything else: a documented best-effort fallback that reports
//     requested descriptors immediately ready, deferring real detection to
//     the single non-blocking read/write attempt that follows
//
// Unlike a persistent-registration reactor, a Selector here opens a fresh
// polling instance for every call: Conditions are ephemeral by design, so
// there is nothing to keep registered between scheduler passes.
//
// # Thread safety
//
// None of Condition, Future, Task, or TaskGroup synchronize internally.
// The suspension protocol above guarantees a single goroutine ever touches
// a given scheduler's state at a time, so there is nothing to protect.
// [AbortSignal] and [AbortController] are the one exception, since aborting
// an operation from outside its own scheduler is a common pattern; they
// remain safe for concurrent use, but [Task.CancelOnAbort]'s own handler
// still runs on the scheduler's goroutine.
//
// # Usage
//
//	result, err := xio.Run(func(ctx *xio.Ctx) (string, error) {
//	    data, err := xio.WithGroup(ctx, func(ctx *xio.Ctx, g *xio.TaskGroup) (string, error) {
//	        xio.AddTask(g, func(ctx *xio.Ctx) (struct{}, error) {
//	            return struct{}{}, ctx.Sleep(10 * time.Millisecond)
//	        })
//	        return "done", nil
//	    })
//	    return data, err
//	})
//
// # Error types
//
// The package provides a small set of error types used throughout:
//   - [AggregateError]: available for callers that need to report more than
//     one cause under a single error value; the runtime itself always
//     surfaces the first failure in a scope and drops the rest (G5), so it
//     never constructs one internally
//   - [AbortError]: raised when an [AbortSignal] fires
//   - [TypeError], [RangeError]: available for argument validation; the
//     runtime's own functions never return them
//   - [TimeoutError]: raised by [Timeout] when the deadline wins
//   - [PanicError]: wraps a recovered panic from a task's function
//   - [Cancelled]: the sentinel delivered to a cancelled task; it never
//     surfaces to the task's owner (cancellation is not a failure)
//
// All error types implement [error] and, where applicable, [errors.Unwrap];
// [AbortError], [AggregateError], and [Cancelled] also provide type-based
// matching via Is.
package xio
