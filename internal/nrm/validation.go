package nrm

import (
	"math"
	"strings"
)

// ValidationError collects multiple validation issues so a bad model file
// reports everything wrong with it in one pass.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid model: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "model validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateModelConfig checks a parsed model file for structural problems:
// missing names, duplicate species or reactions, references to undeclared
// species, negative or NaN rate constants, and bad run parameters.
func ValidateModelConfig(cfg ModelConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("model name is required")
	}

	speciesSet := make(map[string]bool)
	if len(cfg.Species) == 0 {
		err.Add("at least one species is required")
	}
	for _, sp := range cfg.Species {
		if sp.Name == "" {
			err.Add("species name is required")
			continue
		}
		if speciesSet[sp.Name] {
			err.Add("duplicate species name: " + sp.Name)
		}
		speciesSet[sp.Name] = true
		if sp.Initial < 0 || math.IsNaN(sp.Initial) {
			err.Add("species " + sp.Name + ": initial amount must be non-negative")
		}
	}

	if len(cfg.Reactions) == 0 {
		err.Add("at least one reaction is required")
	}
	reactionSet := make(map[string]bool)
	for _, rx := range cfg.Reactions {
		name := rx.Name
		if name == "" {
			err.Add("reaction name is required")
			name = "(unnamed)"
		} else if reactionSet[name] {
			err.Add("duplicate reaction name: " + name)
		}
		reactionSet[name] = true

		if rx.Rate < 0 || math.IsNaN(rx.Rate) {
			err.Add("reaction " + name + ": rate constant must be non-negative")
		}
		validateTerms(err, name, "reactant", rx.Reactants, speciesSet)
		validateTerms(err, name, "product", rx.Products, speciesSet)
	}

	if cfg.Simulation.EndTime < 0 || math.IsNaN(cfg.Simulation.EndTime) {
		err.Add("simulation end_time must be non-negative")
	}
	if cfg.Simulation.MaxJumps < 0 {
		err.Add("simulation max_jumps must be non-negative")
	}
	if _, saveErr := SavePositionsFromConfig(cfg.Simulation.Save); saveErr != nil {
		err.Add(saveErr.Error())
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func validateTerms(err *ValidationError, reaction, side string, terms []TermConfig, species map[string]bool) {
	seen := make(map[string]bool)
	for _, term := range terms {
		if term.Species == "" {
			err.Add("reaction " + reaction + ": " + side + " species is required")
			continue
		}
		if !species[term.Species] {
			err.Add("reaction " + reaction + ": unknown " + side + " species: " + term.Species)
		}
		if seen[term.Species] {
			err.Add("reaction " + reaction + ": duplicate " + side + " species: " + term.Species)
		}
		seen[term.Species] = true
		if term.Count < 0 {
			err.Add("reaction " + reaction + ": " + side + " count must be positive")
		}
	}
}
