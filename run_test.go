package xio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerMetrics_TracksSleepingRun(t *testing.T) {
	clock := newManualClock()
	metrics := NewSchedulerMetrics()

	_, err := Run(func(ctx *Ctx) (struct{}, error) {
		return struct{}{}, ctx.Sleep(5 * time.Second)
	}, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)), WithMetrics(metrics))

	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TasksStarted())
	assert.Equal(t, 0, metrics.TasksFailed())
	assert.Equal(t, 1, metrics.SelectorPasses())
	assert.Equal(t, 5*time.Second, metrics.TotalWait())
	assert.Equal(t, 5*time.Second, metrics.MaxWait())
}

func TestSchedulerMetrics_TracksFailedTask(t *testing.T) {
	clock := newManualClock()
	metrics := NewSchedulerMetrics()
	wantErr := errors.New("boom")

	_, err := Run(func(ctx *Ctx) (struct{}, error) {
		return struct{}{}, wantErr
	}, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)), WithMetrics(metrics))

	require.Error(t, err)
	assert.Equal(t, 1, metrics.TasksStarted())
	assert.Equal(t, 1, metrics.TasksFailed())
	assert.Equal(t, 0, metrics.SelectorPasses())
}

func TestSchedulerMetrics_NilReceiverIsSafeNoOp(t *testing.T) {
	var metrics *SchedulerMetrics
	assert.NotPanics(t, func() {
		metrics.observeWait(time.Second)
		metrics.observeTaskStarted()
		metrics.observeTaskFailed()
	})
}
