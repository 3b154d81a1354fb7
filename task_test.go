package xio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithFakeClock[T any](fn func(ctx *Ctx) (T, error)) (T, error) {
	clock := newManualClock()
	return Run(fn, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)))
}

func TestRun_ReturnsResult(t *testing.T) {
	result, err := runWithFakeClock(func(ctx *Ctx) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result)
}

func TestRun_PropagatesFailure(t *testing.T) {
	wantErr := errors.New("task failed")
	_, err := runWithFakeClock(func(ctx *Ctx) (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestRun_RecoversPanicAsPanicError(t *testing.T) {
	_, err := runWithFakeClock(func(ctx *Ctx) (int, error) {
		panic("kaboom")
	})
	var panicErr PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "kaboom", panicErr.Value)
}

func TestCtx_SleepAdvancesClockAndResumes(t *testing.T) {
	clock := newManualClock()
	start := clock.now()

	result, err := Run(func(ctx *Ctx) (time.Duration, error) {
		if err := ctx.Sleep(30 * time.Second); err != nil {
			return 0, err
		}
		return ctx.now().Sub(start), nil
	}, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)))

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, result)
}

func TestTask_CancelBeforeFirstStepTerminatesSilently(t *testing.T) {
	clock := newManualClock()

	_, err := Run(func(ctx *Ctx) (struct{}, error) {
		return WithGroup(ctx, func(gctx *Ctx, g *TaskGroup) (struct{}, error) {
			child := AddTask(g, func(inner *Ctx) (struct{}, error) {
				return struct{}{}, nil
			})
			// Cancelling before the child has ever been resumed: it never
			// gets to run its function at all, and the group must not
			// treat that as a failure.
			child.Cancel()
			return struct{}{}, nil
		})
	}, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)))

	require.NoError(t, err)
}

func TestTask_CancelAfterSuspendSurfacesNoFailure(t *testing.T) {
	clock := newManualClock()
	var childErr error
	var childRan bool

	_, err := Run(func(ctx *Ctx) (struct{}, error) {
		return WithGroup(ctx, func(gctx *Ctx, g *TaskGroup) (struct{}, error) {
			child := AddTask(g, func(inner *Ctx) (struct{}, error) {
				childRan = true
				childErr = inner.Sleep(time.Hour)
				return struct{}{}, childErr
			})
			// Sleeping (rather than returning immediately) forces a second
			// scheduling pass, so by the time Cancel is reached below the
			// child has already been started and is genuinely suspended —
			// not racing its own first step.
			if err := gctx.Sleep(0); err != nil {
				return struct{}{}, err
			}
			child.Cancel()
			return struct{}{}, nil
		})
	}, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)))

	require.NoError(t, err)
	assert.True(t, childRan)
	assert.ErrorIs(t, childErr, Cancelled)
}
