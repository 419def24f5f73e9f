package nrm

import (
	"errors"
	"fmt"
)

// ErrMissingDependencyGraph is returned at build time when the model contains
// function-rate channels but no dependency graph was supplied. The core cannot
// introspect an opaque rate function, so without a graph every event would
// force a full O(M) rate recompute.
var ErrMissingDependencyGraph = errors.New("function-rate channels require an explicit dependency graph")

// ErrInvalidRate is returned when a rate evaluation produces a negative or
// NaN intensity.
var ErrInvalidRate = errors.New("channel rate is negative or NaN")

// ErrHeapInvariant signals an internal scheduling bug, such as an update for
// a channel id the queue does not know. It is never expected during normal
// operation.
var ErrHeapInvariant = errors.New("priority queue invariant violated")

func invalidRateError(channel int, rate float64) error {
	return fmt.Errorf("channel %d: rate %v: %w", channel, rate, ErrInvalidRate)
}
