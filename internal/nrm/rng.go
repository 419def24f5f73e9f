package nrm

import "math/rand"

// ExpSampler supplies unit-rate exponential waiting times. The aggregator
// owns its sampler exclusively; sharing one with the host breaks
// reproducibility unless seeds are split deterministically.
type ExpSampler interface {
	// RandExp returns a draw from Exp(1).
	RandExp() float64
}

// randSampler wraps a seeded *rand.Rand.
type randSampler struct {
	rng *rand.Rand
}

// NewExpSampler creates an ExpSampler backed by a dedicated source with the
// given seed.
func NewExpSampler(seed int64) ExpSampler {
	return &randSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *randSampler) RandExp() float64 {
	return s.rng.ExpFloat64()
}
