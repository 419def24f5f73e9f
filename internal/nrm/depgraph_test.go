package nrm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// birthDeathSystem is ∅→A (k=10) and A→∅ (k=1).
func birthDeathSystem() *MassActionSystem {
	return NewMassActionSystem([]MassActionReaction{
		{
			Name:      "birth",
			RateConst: 10,
			NetStoich: []StoichChange{{Species: 0, Delta: 1}},
		},
		{
			Name:      "death",
			RateConst: 1,
			Reactants: []Reactant{{Species: 0, Count: 1}},
			NetStoich: []StoichChange{{Species: 0, Delta: -1}},
		},
	})
}

func TestBuildDependencyGraph_Derived(t *testing.T) {
	graph, err := BuildDependencyGraph(birthDeathSystem(), 0, nil)
	require.NoError(t, err)

	// Both channels change A, and only death reads A. Self-loops are
	// mandatory either way.
	assert.Equal(t, DependencyGraph{{0, 1}, {1}}, graph)
}

func TestBuildDependencyGraph_DerivedDecoupled(t *testing.T) {
	// Two independent decay channels must not depend on each other.
	sys := NewMassActionSystem([]MassActionReaction{
		{
			Name:      "decayA",
			RateConst: 1,
			Reactants: []Reactant{{Species: 0, Count: 1}},
			NetStoich: []StoichChange{{Species: 0, Delta: -1}},
		},
		{
			Name:      "decayB",
			RateConst: 2,
			Reactants: []Reactant{{Species: 1, Count: 1}},
			NetStoich: []StoichChange{{Species: 1, Delta: -1}},
		},
	})

	graph, err := BuildDependencyGraph(sys, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DependencyGraph{{0}, {1}}, graph)
}

func TestBuildDependencyGraph_SelfLoopAlways(t *testing.T) {
	graph, err := BuildDependencyGraph(birthDeathSystem(), 0, nil)
	require.NoError(t, err)
	for i, deps := range graph {
		assert.Contains(t, deps, i, "channel %d must depend on itself", i)
	}
}

func TestBuildDependencyGraph_UserGraphAugmented(t *testing.T) {
	user := DependencyGraph{{1}, {}}
	graph, err := BuildDependencyGraph(birthDeathSystem(), 0, user)
	require.NoError(t, err)

	assert.Equal(t, DependencyGraph{{0, 1}, {1}}, graph)

	// Augmentation is idempotent: feeding the result back changes nothing.
	again, err := BuildDependencyGraph(birthDeathSystem(), 0, graph)
	require.NoError(t, err)
	assert.Equal(t, graph, again)
}

func TestBuildDependencyGraph_UserGraphSortedDeduped(t *testing.T) {
	user := DependencyGraph{{1, 1, 0}, {0, 1, 0}}
	graph, err := BuildDependencyGraph(birthDeathSystem(), 0, user)
	require.NoError(t, err)
	assert.Equal(t, DependencyGraph{{0, 1}, {0, 1}}, graph)
}

func TestBuildDependencyGraph_MissingForFunctionChannels(t *testing.T) {
	_, err := BuildDependencyGraph(birthDeathSystem(), 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependencyGraph)
}

func TestBuildDependencyGraph_UserGraphCoversFunctionChannels(t *testing.T) {
	user := DependencyGraph{{0}, {1}, {0, 1, 2}}
	graph, err := BuildDependencyGraph(birthDeathSystem(), 1, user)
	require.NoError(t, err)
	assert.Len(t, graph, 3)
}

func TestBuildDependencyGraph_BadUserGraph(t *testing.T) {
	_, err := BuildDependencyGraph(birthDeathSystem(), 0, DependencyGraph{{0}})
	assert.Error(t, err, "wrong entry count")

	_, err = BuildDependencyGraph(birthDeathSystem(), 0, DependencyGraph{{0, 7}, {1}})
	assert.Error(t, err, "reference to unknown channel")
}
