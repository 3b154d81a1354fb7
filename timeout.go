package xio

import "time"

// Timeout runs body inside a scope with a timer child attached: if body is
// still running when d elapses, body is cancelled and a *TimeoutError is
// returned; if body finishes first, the timer is cancelled and body's own
// result or failure is returned unchanged (spec §4.7 "timeout").
func Timeout[T any](ctx *Ctx, d time.Duration, body func(ctx *Ctx) (T, error)) (T, error) {
	return WithGroup(ctx, func(gctx *Ctx, g *TaskGroup) (T, error) {
		timer := AddTask(g, func(c *Ctx) (struct{}, error) {
			if err := c.Sleep(d); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, &TimeoutError{Message: "operation timed out"}
		})

		result, err := body(gctx)
		timer.Cancel()
		return result, err
	})
}
