package nrm

import (
	"fmt"
	"sort"
)

// BuildModelFromConfig turns a validated model file into a Model. Reactants
// become the reaction's input multiplicities; the net stoichiometry is
// products minus reactants, merged per species with zero-change entries
// dropped.
func BuildModelFromConfig(cfg ModelConfig) (*Model, error) {
	if err := ValidateModelConfig(cfg); err != nil {
		return nil, err
	}

	model := NewModel(cfg.Name)
	for _, sp := range cfg.Species {
		model.WithSpecies(Species{Name: sp.Name, Initial: sp.Initial})
	}

	for _, rx := range cfg.Reactions {
		reaction, err := buildReaction(model, rx)
		if err != nil {
			return nil, err
		}
		model.WithMassAction(reaction)
	}
	return model, nil
}

func buildReaction(model *Model, rx ReactionConfig) (MassActionReaction, error) {
	net := make(map[SpeciesIndex]float64)

	reactants := make([]Reactant, 0, len(rx.Reactants))
	for _, term := range rx.Reactants {
		idx, count, err := resolveTerm(model, rx.Name, term)
		if err != nil {
			return MassActionReaction{}, err
		}
		reactants = append(reactants, Reactant{Species: idx, Count: count})
		net[idx] -= float64(count)
	}
	for _, term := range rx.Products {
		idx, count, err := resolveTerm(model, rx.Name, term)
		if err != nil {
			return MassActionReaction{}, err
		}
		net[idx] += float64(count)
	}

	// Sorted per species index so the stoichiometry layout (and with it the
	// derived dependency graph) is stable across runs.
	indices := make([]int, 0, len(net))
	for idx, delta := range net {
		if delta != 0 {
			indices = append(indices, int(idx))
		}
	}
	sort.Ints(indices)
	stoich := make([]StoichChange, 0, len(indices))
	for _, idx := range indices {
		stoich = append(stoich, StoichChange{Species: SpeciesIndex(idx), Delta: net[SpeciesIndex(idx)]})
	}

	return MassActionReaction{
		Name:      rx.Name,
		RateConst: rx.Rate,
		Reactants: reactants,
		NetStoich: stoich,
	}, nil
}

func resolveTerm(model *Model, reaction string, term TermConfig) (SpeciesIndex, int, error) {
	idx, ok := model.SpeciesIndexByName(term.Species)
	if !ok {
		return 0, 0, fmt.Errorf("reaction %s: unknown species %s", reaction, term.Species)
	}
	count := term.Count
	if count == 0 {
		count = 1
	}
	return idx, count, nil
}
