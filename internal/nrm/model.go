package nrm

import (
	"fmt"
	"strings"
)

// Species declares one component of the state vector together with its
// initial amount.
type Species struct {
	Name    string
	Initial float64
}

// Model defines a jump system: named species plus the reaction channels
// that move them. Mass-action reactions are numbered before function-rate
// channels.
type Model struct {
	Name string

	species    []Species
	speciesIdx map[string]SpeciesIndex
	massAction []MassActionReaction
	function   []FunctionChannel
	deps       DependencyGraph
}

// NewModel creates an empty model with the given name.
func NewModel(name string) *Model {
	return &Model{
		Name:       name,
		speciesIdx: make(map[string]SpeciesIndex),
	}
}

// WithSpecies appends species declarations and returns the model for method
// chaining. Species indices follow declaration order.
func (m *Model) WithSpecies(species ...Species) *Model {
	for _, sp := range species {
		if _, exists := m.speciesIdx[sp.Name]; exists {
			continue
		}
		m.speciesIdx[sp.Name] = SpeciesIndex(len(m.species))
		m.species = append(m.species, sp)
	}
	return m
}

// WithMassAction appends mass-action reactions and returns the model for
// method chaining.
func (m *Model) WithMassAction(reactions ...MassActionReaction) *Model {
	m.massAction = append(m.massAction, reactions...)
	return m
}

// WithFunctionChannels appends function-rate channels and returns the model
// for method chaining.
func (m *Model) WithFunctionChannels(channels ...FunctionChannel) *Model {
	m.function = append(m.function, channels...)
	return m
}

// WithDependencies sets an explicit dependency graph over all channels.
// Mandatory when the model has function channels.
func (m *Model) WithDependencies(deps DependencyGraph) *Model {
	m.deps = deps
	return m
}

// SpeciesIndexByName resolves a species name to its state-vector index.
func (m *Model) SpeciesIndexByName(name string) (SpeciesIndex, bool) {
	idx, ok := m.speciesIdx[name]
	return idx, ok
}

// SpeciesList returns the declared species in index order.
func (m *Model) SpeciesList() []Species {
	return m.species
}

// NumSpecies returns the state-vector length.
func (m *Model) NumSpecies() int {
	return len(m.species)
}

// NumChannels returns the total channel count.
func (m *Model) NumChannels() int {
	return len(m.massAction) + len(m.function)
}

// InitialState builds a fresh state vector from the species declarations.
func (m *Model) InitialState() []float64 {
	u := make([]float64, len(m.species))
	for i, sp := range m.species {
		u[i] = sp.Initial
	}
	return u
}

// Aggregator builds an NRM aggregator for this model using the given
// sampler.
func (m *Model) Aggregator(sampler ExpSampler, logger Logger) (*Aggregator, error) {
	return NewAggregator(AggregatorConfig{
		MassAction:   NewMassActionSystem(m.massAction),
		Function:     m.function,
		Dependencies: m.deps,
		Sampler:      sampler,
		Logger:       logger,
	})
}

// Summary renders a deterministic plain-text description of the model:
// species with initial amounts, then channels with their stoichiometry or
// kind. Output is stable across runs, so it is suitable for golden-file
// comparison.
func (m *Model) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model %s\n", m.Name)
	fmt.Fprintf(&b, "species (%d):\n", len(m.species))
	for i, sp := range m.species {
		fmt.Fprintf(&b, "  [%d] %s initial=%g\n", i, sp.Name, sp.Initial)
	}
	fmt.Fprintf(&b, "channels (%d):\n", m.NumChannels())
	for i, rx := range m.massAction {
		fmt.Fprintf(&b, "  [%d] %s mass-action k=%g reactants=%s net=%s\n",
			i, rx.Name, rx.RateConst, m.formatReactants(rx.Reactants), m.formatStoich(rx.NetStoich))
	}
	for i, fc := range m.function {
		fmt.Fprintf(&b, "  [%d] %s function-rate\n", len(m.massAction)+i, fc.Name)
	}
	return b.String()
}

func (m *Model) formatReactants(reactants []Reactant) string {
	if len(reactants) == 0 {
		return "∅"
	}
	parts := make([]string, len(reactants))
	for i, r := range reactants {
		parts[i] = fmt.Sprintf("%d·%s", r.Count, m.species[r.Species].Name)
	}
	return strings.Join(parts, "+")
}

func (m *Model) formatStoich(stoich []StoichChange) string {
	if len(stoich) == 0 {
		return "∅"
	}
	parts := make([]string, len(stoich))
	for i, ch := range stoich {
		parts[i] = fmt.Sprintf("%s%+g", m.species[ch.Species].Name, ch.Delta)
	}
	return strings.Join(parts, ",")
}
