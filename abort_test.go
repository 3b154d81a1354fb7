package xio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortSignal_AbortRecordsReasonAndNotifiesHandlers(t *testing.T) {
	controller := NewAbortController()
	signal := controller.Signal()

	var gotReason any
	signal.OnAbort(func(reason any) { gotReason = reason })

	require.False(t, signal.Aborted())
	require.NoError(t, signal.ThrowIfAborted())

	controller.Abort("shutting down")

	assert.True(t, signal.Aborted())
	assert.Equal(t, "shutting down", signal.Reason())
	assert.Equal(t, "shutting down", gotReason)

	var abortErr *AbortError
	require.ErrorAs(t, signal.ThrowIfAborted(), &abortErr)
}

func TestAbortSignal_OnAbortFiresImmediatelyIfAlreadyAborted(t *testing.T) {
	controller := NewAbortController()
	controller.Abort("already gone")

	var called bool
	controller.Signal().OnAbort(func(reason any) {
		called = true
		assert.Equal(t, "already gone", reason)
	})
	assert.True(t, called)
}

func TestAbortController_AbortIsIdempotent(t *testing.T) {
	controller := NewAbortController()
	controller.Abort("first")
	controller.Abort("second")
	assert.Equal(t, "first", controller.Signal().Reason())
}

func TestAbortController_NilReasonDefaultsToAbortError(t *testing.T) {
	controller := NewAbortController()
	controller.Abort(nil)

	reason, ok := controller.Signal().Reason().(*AbortError)
	require.True(t, ok)
	assert.Equal(t, "Aborted", reason.Reason)
}

func TestAbortAny_EmptyNeverAborts(t *testing.T) {
	composite := AbortAny(nil)
	assert.False(t, composite.Aborted())
}

func TestAbortAny_AlreadyAbortedInputAbortsImmediately(t *testing.T) {
	controller := NewAbortController()
	controller.Abort("pre-aborted")

	composite := AbortAny([]*AbortSignal{NewAbortController().Signal(), controller.Signal()})
	require.True(t, composite.Aborted())
	assert.Equal(t, "pre-aborted", composite.Reason())
}

func TestAbortAny_FirstToAbortWins(t *testing.T) {
	a := NewAbortController()
	b := NewAbortController()
	composite := AbortAny([]*AbortSignal{a.Signal(), b.Signal()})

	require.False(t, composite.Aborted())
	a.Abort("a went first")
	b.Abort("b came second")

	assert.True(t, composite.Aborted())
	assert.Equal(t, "a went first", composite.Reason())
}

func TestTask_CancelOnAbortCancelsRunningTask(t *testing.T) {
	clock := newManualClock()
	controller := NewAbortController()
	var sleeperErr error

	_, err := Run(func(ctx *Ctx) (struct{}, error) {
		return WithGroup(ctx, func(gctx *Ctx, g *TaskGroup) (struct{}, error) {
			sleeper := AddTask(g, func(inner *Ctx) (struct{}, error) {
				sleeperErr = inner.Sleep(time.Hour)
				return struct{}{}, sleeperErr
			})
			sleeper.CancelOnAbort(controller.Signal())

			// Let the sleeper start and genuinely suspend before aborting.
			if err := gctx.Sleep(0); err != nil {
				return struct{}{}, err
			}
			controller.Abort(errors.New("shutdown requested"))
			return struct{}{}, nil
		})
	}, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)))

	require.NoError(t, err)
	assert.ErrorIs(t, sleeperErr, Cancelled)
}
