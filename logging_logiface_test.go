package xio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogifaceLogger_IsEnabledRespectsLevel(t *testing.T) {
	logger := NewLogifaceLogger(nil, LevelWarn)
	assert.False(t, logger.IsEnabled(LevelDebug))
	assert.False(t, logger.IsEnabled(LevelInfo))
	assert.True(t, logger.IsEnabled(LevelWarn))
	assert.True(t, logger.IsEnabled(LevelError))
}

// TestLogifaceLogger_WritesTaskFailureAsStructuredJSON wires NewLogifaceLogger
// into SetLogger exactly the way a consumer would, then drives a failing Run
// to confirm a real task-lifecycle event reaches stumpy's JSON encoder.
func TestLogifaceLogger_WritesTaskFailureAsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewLogifaceLogger(&buf, LevelError))
	defer SetLogger(nil)

	clock := newManualClock()
	wantErr := errors.New("boom")
	_, err := Run(func(ctx *Ctx) (struct{}, error) {
		return struct{}{}, wantErr
	}, WithClock(clock.now), WithSelector(newFakeSelectorFactory(clock)))
	require.ErrorIs(t, err, wantErr)

	out := buf.String()
	assert.Contains(t, out, `"lvl":"err"`)
	assert.Contains(t, out, `"task failed"`)
	assert.Contains(t, out, `"boom"`)
}
