package nrm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpQueue_PeekMin(t *testing.T) {
	q := newJumpQueue([]float64{3.0, 1.5, 2.0})

	tm, id := q.PeekMin()
	assert.Equal(t, 1.5, tm)
	assert.Equal(t, 1, id)
}

func TestJumpQueue_TieBreaksTowardSmallerID(t *testing.T) {
	q := newJumpQueue([]float64{2.0, 1.0, 1.0, 5.0})

	_, id := q.PeekMin()
	assert.Equal(t, 1, id, "equal times should pop the smaller channel id")
}

func TestJumpQueue_Read(t *testing.T) {
	q := newJumpQueue([]float64{3.0, 1.5, 2.0})

	assert.Equal(t, 3.0, q.Read(0))
	assert.Equal(t, 1.5, q.Read(1))
	assert.Equal(t, 2.0, q.Read(2))
}

func TestJumpQueue_UpdateDecrease(t *testing.T) {
	q := newJumpQueue([]float64{3.0, 1.5, 2.0})

	require.NoError(t, q.Update(0, 0.5))
	tm, id := q.PeekMin()
	assert.Equal(t, 0.5, tm)
	assert.Equal(t, 0, id)
}

func TestJumpQueue_UpdateIncrease(t *testing.T) {
	q := newJumpQueue([]float64{3.0, 1.5, 2.0})

	require.NoError(t, q.Update(1, 10.0))
	tm, id := q.PeekMin()
	assert.Equal(t, 2.0, tm)
	assert.Equal(t, 2, id)
	assert.Equal(t, 10.0, q.Read(1))
}

func TestJumpQueue_UpdateToInfinity(t *testing.T) {
	q := newJumpQueue([]float64{3.0, 1.5, 2.0})

	require.NoError(t, q.Update(1, math.Inf(1)))
	tm, id := q.PeekMin()
	assert.Equal(t, 2.0, tm)
	assert.Equal(t, 2, id)

	// And back down from infinity.
	require.NoError(t, q.Update(1, 0.1))
	tm, id = q.PeekMin()
	assert.Equal(t, 0.1, tm)
	assert.Equal(t, 1, id)
}

func TestJumpQueue_AllInfinite(t *testing.T) {
	inf := math.Inf(1)
	q := newJumpQueue([]float64{inf, inf, inf})

	tm, id := q.PeekMin()
	assert.True(t, math.IsInf(tm, 1))
	assert.Equal(t, 0, id, "all-infinite queue still reports the smallest id")
}

func TestJumpQueue_UnknownIDFails(t *testing.T) {
	q := newJumpQueue([]float64{1.0, 2.0})

	err := q.Update(5, 0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHeapInvariant)

	err = q.Update(-1, 0.5)
	assert.ErrorIs(t, err, ErrHeapInvariant)
}

func TestJumpQueue_ManyUpdatesKeepOrder(t *testing.T) {
	times := []float64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	q := newJumpQueue(times)

	_, id := q.PeekMin()
	require.Equal(t, 9, id)

	// Reverse every schedule and confirm the heap tracks the new minimum.
	for i := range times {
		require.NoError(t, q.Update(i, float64(i)))
	}
	tm, id := q.PeekMin()
	assert.Equal(t, 0.0, tm)
	assert.Equal(t, 0, id)

	require.NoError(t, q.Update(0, 100))
	tm, id = q.PeekMin()
	assert.Equal(t, 1.0, tm)
	assert.Equal(t, 1, id)
}
