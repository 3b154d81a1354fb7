package xio

import "time"

// TaskGroup is a structured-concurrency scope: it owns an ordered set of
// child tasks plus a synthetic task driving the scope body itself, and
// multiplexes all of their Conditions into one Condition yielded from the
// enclosing suspension point (spec §3/§4.5 "TaskGroup").
//
// There is no frame splicing here (contrast the source runtime, which
// mutates a running generator's frame in place): TaskGroup is a plain value
// that [WithGroup] drives from the calling goroutine's own suspension point,
// exactly the "scheduler that accepts an explicit list of runnables at a
// given scope" called for by spec §9.
type TaskGroup struct {
	children       []runnable
	bodyTask       runnable
	clock          func() time.Time
	metrics        *SchedulerMetrics
	pendingFailure error
}

// AddTask attaches a child computation to g. The child becomes runnable no
// later than the scope's first suspension point (G1); it runs concurrently
// with the scope body and with any other children already attached.
//
// AddTask is a free function, not a method, because Go forbids a method
// from introducing its own type parameter independent of its receiver's.
func AddTask[T any](g *TaskGroup, fn func(ctx *Ctx) (T, error)) *Task[T] {
	t := newTaskWithClock(fn, g.clock, g.metrics)
	g.children = append(g.children, t)
	return t
}

// Tasks returns the scope's currently running children, in the order they
// were added. Children that have already terminated are not included
// (spec §3 TaskGroup.tasks, scenario S10).
func (g *TaskGroup) Tasks() []TaskHandle {
	out := make([]TaskHandle, 0, len(g.children))
	for _, c := range g.children {
		if h, ok := c.(TaskHandle); ok {
			out = append(out, h)
		}
	}
	return out
}

// Cancel records failure as the scope's pending failure if none is set yet,
// then cancels every running child and the scope body (spec §4.5 "Public
// operations: cancel(failure)").
func (g *TaskGroup) Cancel(failure error) {
	g.recordFailure(failure)
	g.cancelAll()
}

func (g *TaskGroup) recordFailure(failure error) {
	if g.pendingFailure == nil {
		g.pendingFailure = failure
	}
}

func (g *TaskGroup) cancelAll() {
	for _, c := range g.children {
		if !c.terminated() {
			c.cancel()
		}
	}
	if g.bodyTask != nil && !g.bodyTask.terminated() {
		g.bodyTask.cancel()
	}
}

// removeChild drops a terminated child from the group's tracked list.
func (g *TaskGroup) removeChild(target runnable) {
	for i, c := range g.children {
		if c == target {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return
		}
	}
}

// remaining reports every runnable (body plus children) that has not yet
// terminated, in FIFO order with the body last so children always get a
// chance to start before the body's own continuation is considered
// (ordering has no semantic effect beyond FIFO dispatch within one pass).
func (g *TaskGroup) remaining() []runnable {
	out := make([]runnable, 0, len(g.children)+1)
	for _, c := range g.children {
		if !c.terminated() {
			out = append(out, c)
		}
	}
	if g.bodyTask != nil && !g.bodyTask.terminated() {
		out = append(out, g.bodyTask)
	}
	return out
}

// runUntilDone drives the group's scheduler loop: it repeatedly yields the
// combined Condition of everything still running through ctx, dispatches
// the resulting observation (or injected failure) to each of them, and
// handles terminations, until body and every child have finished (spec
// §4.5 "Run loop of a TaskGroup").
func (g *TaskGroup) runUntilDone(ctx *Ctx) error {
	for {
		all := g.remaining()
		if len(all) == 0 {
			break
		}

		conds := make([]Condition, len(all))
		for i, r := range all {
			conds[i] = r.condition()
		}
		obs, injErr := ctx.suspend(CombineConditions(conds))
		state := resumeInput{obs: obs, err: injErr}
		if injErr != nil {
			// A failure was injected into this scope from the outside
			// (e.g. an enclosing group or the root loop's selector);
			// treat it like a body failure: first-failure-wins, then
			// unwind everything.
			g.recordFailure(injErr)
		}

		for _, r := range all {
			if r.terminated() {
				continue
			}
			if !r.resume(state, ctx.now()) {
				continue
			}
			if r == g.bodyTask {
				if err := r.outcome(); err != nil {
					g.recordFailure(err)
					g.cancelAll()
				}
				continue
			}
			g.removeChild(r)
			if err := r.outcome(); err != nil {
				g.recordFailure(err)
				g.cancelAll()
			}
		}
	}
	return g.pendingFailure
}

// WithGroup opens a TaskGroup scope: it runs body concurrently with
// whatever children body attaches via [AddTask], and does not return until
// every child has terminated (normal scope exit awaits stragglers, spec
// §4.5 G2). If any child or the body itself fails, every other participant
// is cancelled and the first failure reported; secondary failures raised
// while unwinding are dropped (G3-G5).
func WithGroup[T any](ctx *Ctx, body func(ctx *Ctx, g *TaskGroup) (T, error)) (T, error) {
	g := &TaskGroup{clock: ctx.clock, metrics: ctx.metrics}
	bodyTask := newTaskWithClock(func(inner *Ctx) (T, error) {
		return body(inner, g)
	}, ctx.clock, ctx.metrics)
	g.bodyTask = bodyTask

	err := g.runUntilDone(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	result, _ := bodyTask.Result()
	return result, nil
}
