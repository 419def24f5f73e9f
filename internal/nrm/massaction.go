package nrm

import "math"

// SpeciesIndex identifies a species by its position in the state vector.
type SpeciesIndex int

// Reactant is one (species, multiplicity) pair on the input side of a
// mass-action reaction.
type Reactant struct {
	Species SpeciesIndex
	Count   int
}

// StoichChange is the net change a reaction applies to one species when it
// fires.
type StoichChange struct {
	Species SpeciesIndex
	Delta   float64
}

// MassActionReaction is a declarative channel: a base rate constant, sparse
// reactant multiplicities, and the sparse net stoichiometry applied on
// firing.
type MassActionReaction struct {
	Name      string
	RateConst float64
	Reactants []Reactant
	NetStoich []StoichChange
}

// MassActionSystem holds the declarative channels of a model. Channel
// indices here are local: reaction i of the system is channel i of the
// aggregator.
type MassActionSystem struct {
	reactions []MassActionReaction
}

// NewMassActionSystem wraps the given reactions.
func NewMassActionSystem(reactions []MassActionReaction) *MassActionSystem {
	return &MassActionSystem{reactions: reactions}
}

// NumReactions returns the number of mass-action channels.
func (s *MassActionSystem) NumReactions() int {
	if s == nil {
		return 0
	}
	return len(s.reactions)
}

// Reaction returns the i-th reaction.
func (s *MassActionSystem) Reaction(i int) MassActionReaction {
	return s.reactions[i]
}

// EvalRate computes the intensity of reaction i in state u using the
// falling-factorial counting convention:
//
//	k · ∏ u(u-1)…(u-ν+1) / ν!
//
// For integer counts this is k times the number of distinct reactant
// combinations, hitting exactly zero when a species has fewer copies than
// the reaction consumes. For fractional amounts the product can go
// negative; the raw value is returned so callers reject it as an invalid
// intensity instead of silently treating the channel as dormant.
func (s *MassActionSystem) EvalRate(u []float64, i int) float64 {
	rx := s.reactions[i]
	rate := rx.RateConst
	for _, r := range rx.Reactants {
		n := u[r.Species]
		for c := 0; c < r.Count; c++ {
			rate *= n - float64(c)
		}
		rate /= factorial(r.Count)
	}
	return rate
}

// ApplyChange applies the net stoichiometry of reaction i to u.
func (s *MassActionSystem) ApplyChange(u []float64, i int) {
	for _, ch := range s.reactions[i].NetStoich {
		u[ch.Species] += ch.Delta
	}
}

// touchedSpecies reports every species whose amount changes when reaction i
// fires.
func (s *MassActionSystem) touchedSpecies(i int) []SpeciesIndex {
	stoich := s.reactions[i].NetStoich
	out := make([]SpeciesIndex, 0, len(stoich))
	for _, ch := range stoich {
		if ch.Delta != 0 {
			out = append(out, ch.Species)
		}
	}
	return out
}

func factorial(n int) float64 {
	f := 1.0
	for k := 2; k <= n; k++ {
		f *= float64(k)
	}
	return f
}

// validRate reports whether r is a usable intensity: finite-or-infinite,
// non-negative, and not NaN. Negative and NaN intensities have no
// probabilistic meaning.
func validRate(r float64) bool {
	return r >= 0 && !math.IsNaN(r)
}
