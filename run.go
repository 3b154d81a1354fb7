package xio

import "time"

// runConfig holds a Run call's resolved options, built the same way the
// teacher's loop options were: a private struct mutated by a list of
// functional options, rather than a long parameter list.
type runConfig struct {
	clock       func() time.Time
	newSelector func() (Selector, error)
	metrics     *SchedulerMetrics
}

// RunOption configures a [Run] invocation.
type RunOption func(*runConfig)

// WithClock overrides the scheduler's time source. Tests use this to drive
// a fake clock deterministically instead of real wall-clock time.
func WithClock(clock func() time.Time) RunOption {
	return func(c *runConfig) { c.clock = clock }
}

// WithSelector overrides how Run constructs its readiness Selector. Tests
// use this to substitute a Selector double instead of the platform's
// epoll/kqueue/fallback backend.
func WithSelector(factory func() (Selector, error)) RunOption {
	return func(c *runConfig) { c.newSelector = factory }
}

// WithMetrics attaches a [SchedulerMetrics] collector that Run and every
// Task/TaskGroup created within it will report selector-wait and task
// lifecycle statistics to.
func WithMetrics(m *SchedulerMetrics) RunOption {
	return func(c *runConfig) { c.metrics = m }
}

func resolveRunOptions(opts []RunOption) runConfig {
	cfg := runConfig{clock: time.Now, newSelector: newSelector}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Run drives fn to completion as the root task of a freshly constructed
// scheduler instance (spec §4.4 "run(fn)"): it repeatedly blocks on a
// Selector for whatever Condition the root task is currently suspended on,
// delivers the resulting observation, and steps the task again, until it
// terminates.
//
// Run owns its Selector, clock, and metrics for the lifetime of the call;
// there is no process-wide scheduler state (spec §9), so nested or
// sequential Run calls never interfere with one another.
func Run[T any](fn func(ctx *Ctx) (T, error), opts ...RunOption) (T, error) {
	cfg := resolveRunOptions(opts)

	sel, err := cfg.newSelector()
	if err != nil {
		var zero T
		return zero, err
	}
	defer sel.Close()

	root := newTaskWithClock(fn, cfg.clock, cfg.metrics)

	state := resumeInput{}
	for !root.resume(state, cfg.clock()) {
		now := cfg.clock()
		cond := root.condition()

		// A Condition already satisfied (e.g. a past deadline, or a
		// Future completed by a sibling within the same scheduling
		// pass) is not handed to the Selector: nothing external is
		// ever going to make it "more" ready, and the Selector does not
		// watch futures at all, so the task is resumed directly.
		if cond.Fulfilled(Observation{}, now) {
			state = resumeInput{}
			continue
		}

		logSelectorWait(waitDuration(cond, now), len(cond.Files))
		obs, serr := sel.Select(cond, now)
		if cfg.metrics != nil {
			cfg.metrics.observeWait(timeSince(cfg.clock, now))
		}
		state = resumeInput{obs: obs, err: serr}
	}

	result, ok := root.Result()
	if ok {
		return result, nil
	}

	var zero T
	if failure := root.outcome(); failure != nil {
		logRunFailed(failure)
		return zero, failure
	}
	// Cancelled with no failure: the root task itself was cancelled
	// rather than having failed or completed (spec §4.3: cancellation
	// surfaces no failure to the caller of run()).
	return zero, nil
}

func waitDuration(cond Condition, now time.Time) time.Duration {
	d, noWait := blockingTimeout(cond, now)
	if noWait {
		return 0
	}
	return d
}

func timeSince(clock func() time.Time, since time.Time) time.Duration {
	return clock().Sub(since)
}
