package nrm

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// SpeciesConfig declares one species in a model file.
type SpeciesConfig struct {
	Name        string  `yaml:"name"`
	Initial     float64 `yaml:"initial"`
	Description string  `yaml:"description,omitempty"`
}

// TermConfig is one (species, count) term on either side of a reaction.
// Count defaults to 1 when omitted.
type TermConfig struct {
	Species string `yaml:"species"`
	Count   int    `yaml:"count,omitempty"`
}

// ReactionConfig declares one mass-action reaction.
type ReactionConfig struct {
	Name      string       `yaml:"name"`
	Rate      float64      `yaml:"rate"`
	Reactants []TermConfig `yaml:"reactants,omitempty"`
	Products  []TermConfig `yaml:"products,omitempty"`
}

// SimulationConfig holds the run parameters bundled with a model file.
type SimulationConfig struct {
	EndTime  float64 `yaml:"end_time"`
	Seed     int64   `yaml:"seed"`
	Save     string  `yaml:"save,omitempty"` // none | pre | post | both
	MaxJumps int     `yaml:"max_jumps,omitempty"`
}

// ModelConfig is the on-disk representation of a model plus default run
// parameters.
type ModelConfig struct {
	Name       string           `yaml:"name"`
	Species    []SpeciesConfig  `yaml:"species"`
	Reactions  []ReactionConfig `yaml:"reactions"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// LoadModelConfig reads and parses a YAML model file. The result is not yet
// validated; call ValidateModelConfig before building.
func LoadModelConfig(path string) (ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("reading model file: %w", err)
	}
	var cfg ModelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("parsing model YAML: %w", err)
	}
	return cfg, nil
}

// SavePositionsFromConfig maps the save keyword to the recorder flags.
// Unset defaults to post-jump saves.
func SavePositionsFromConfig(save string) (SavePositions, error) {
	switch save {
	case "", "post":
		return SavePositions{Post: true}, nil
	case "pre":
		return SavePositions{Pre: true}, nil
	case "both":
		return SavePositions{Pre: true, Post: true}, nil
	case "none":
		return SavePositions{}, nil
	default:
		return SavePositions{}, fmt.Errorf("invalid save value %q: must be none, pre, post, or both", save)
	}
}

// SimulatorOptionsFromConfig turns the file's simulation block into run
// options. A zero end_time means no horizon in the file and maps to an
// EndTime of +Inf: the run continues until no channel can fire or the jump
// cap is reached, unless the caller sets a horizon.
func SimulatorOptionsFromConfig(sim SimulationConfig) (SimulatorOptions, error) {
	save, err := SavePositionsFromConfig(sim.Save)
	if err != nil {
		return SimulatorOptions{}, err
	}
	endTime := sim.EndTime
	if endTime == 0 {
		endTime = math.Inf(1)
	}
	return SimulatorOptions{
		EndTime:  endTime,
		Seed:     sim.Seed,
		Save:     save,
		MaxJumps: sim.MaxJumps,
	}, nil
}
