package nrm

import (
	"fmt"
	"sort"
)

// DependencyGraph maps each channel to the set of channels whose intensity
// may change when it fires. Entry i is kept sorted ascending and always
// contains i itself: firing a channel always invalidates its own schedule.
type DependencyGraph [][]int

// BuildDependencyGraph resolves the dependency graph for a model with the
// given mass-action system and number of function-rate channels.
//
// A user-supplied graph is used verbatim apart from self-loop augmentation,
// which is idempotent. Without one the graph is derived from stoichiometry,
// which is only possible when every channel is mass-action; otherwise the
// build fails with ErrMissingDependencyGraph.
func BuildDependencyGraph(ma *MassActionSystem, numFunction int, user DependencyGraph) (DependencyGraph, error) {
	numMA := ma.NumReactions()
	total := numMA + numFunction

	if user != nil {
		if len(user) != total {
			return nil, fmt.Errorf("dependency graph has %d entries, model has %d channels", len(user), total)
		}
		graph := make(DependencyGraph, total)
		for i, deps := range user {
			for _, d := range deps {
				if d < 0 || d >= total {
					return nil, fmt.Errorf("dependency graph entry %d references unknown channel %d", i, d)
				}
			}
			graph[i] = normalizeDeps(i, deps)
		}
		return graph, nil
	}

	if numFunction > 0 {
		return nil, fmt.Errorf("%d function-rate channels: %w", numFunction, ErrMissingDependencyGraph)
	}

	// speciesToDependents[s] lists the channels whose rate reads species s,
	// i.e. the channels with s among their reactants.
	speciesToDependents := make(map[SpeciesIndex][]int)
	for j := 0; j < numMA; j++ {
		for _, r := range ma.Reaction(j).Reactants {
			speciesToDependents[r.Species] = append(speciesToDependents[r.Species], j)
		}
	}

	graph := make(DependencyGraph, total)
	for i := 0; i < numMA; i++ {
		deps := []int{}
		for _, s := range ma.touchedSpecies(i) {
			deps = append(deps, speciesToDependents[s]...)
		}
		graph[i] = normalizeDeps(i, deps)
	}
	return graph, nil
}

// normalizeDeps sorts, dedupes, and inserts the mandatory self-loop.
func normalizeDeps(self int, deps []int) []int {
	seen := map[int]struct{}{self: {}}
	out := []int{self}
	for _, d := range deps {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
