package xio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondition_CombineFiles(t *testing.T) {
	a := Condition{Files: map[int]IOMask{3: READ}}
	b := Condition{Files: map[int]IOMask{3: WRITE, 7: READ}}

	out := a.Combine(b)
	assert.Equal(t, READ|WRITE, out.Files[3])
	assert.Equal(t, READ, out.Files[7])
}

func TestCondition_CombineDeadlineIsMinimum(t *testing.T) {
	now := time.Now()
	a := Condition{Deadline: now.Add(5 * time.Second)}
	b := Condition{Deadline: now.Add(1 * time.Second)}
	c := Condition{} // no deadline, the neutral +inf element

	out := CombineConditions([]Condition{a, b, c})
	assert.True(t, out.Deadline.Equal(now.Add(1*time.Second)))
}

func TestCondition_CombineIsCommutativeAndAssociative(t *testing.T) {
	now := time.Now()
	a := Condition{Files: map[int]IOMask{1: READ}, Deadline: now.Add(time.Second)}
	b := Condition{Files: map[int]IOMask{2: WRITE}, Deadline: now.Add(2 * time.Second)}
	c := Condition{Files: map[int]IOMask{1: WRITE}}

	left := CombineConditions([]Condition{a, b, c})
	right := CombineConditions([]Condition{c, b, a})

	assert.Equal(t, left.Files, right.Files)
	assert.True(t, left.Deadline.Equal(right.Deadline))
}

func TestCondition_FulfilledByPastDeadline(t *testing.T) {
	now := time.Now()
	c := Condition{Deadline: now}
	assert.True(t, c.Fulfilled(Observation{}, now))
	assert.False(t, Condition{Deadline: now.Add(time.Second)}.Fulfilled(Observation{}, now))
}

func TestCondition_FulfilledByFiles(t *testing.T) {
	c := Condition{Files: map[int]IOMask{4: READ | WRITE}}
	assert.False(t, c.Fulfilled(Observation{4: READ}, time.Now()))
	assert.True(t, c.Fulfilled(Observation{4: READ | WRITE}, time.Now()))
}

func TestCondition_FulfilledByFuture(t *testing.T) {
	f := NewFuture[int]()
	c := f.asCondition()
	require.False(t, c.Fulfilled(Observation{}, time.Now()))
	f.SetResult(42)
	assert.True(t, c.Fulfilled(Observation{}, time.Now()))
}

func TestImmediate_IsAlwaysFulfilled(t *testing.T) {
	assert.True(t, immediate().Fulfilled(Observation{}, time.Now()))
	// Even a clock far in the future.
	assert.True(t, immediate().Fulfilled(Observation{}, time.Now().Add(100*365*24*time.Hour)))
}

func TestCondition_EmptyCombineIsNeutral(t *testing.T) {
	out := CombineConditions(nil)
	assert.Empty(t, out.Files)
	assert.Empty(t, out.Futures)
	assert.False(t, out.HasDeadline())
}
