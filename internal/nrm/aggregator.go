package nrm

import (
	"fmt"
	"math"
)

// AggregatorConfig collects everything needed to build an Aggregator.
// Mass-action reactions come first in the channel numbering; function-rate
// channels follow them.
type AggregatorConfig struct {
	MassAction *MassActionSystem
	Function   []FunctionChannel

	// Dependencies is optional when every channel is mass-action. Models
	// with function channels must supply it.
	Dependencies DependencyGraph

	// Sampler provides the Exp(1) draws. Required.
	Sampler ExpSampler

	// Logger defaults to a no-op logger.
	Logger Logger
}

// Aggregator implements the Next Reaction Method of Gibson and Bruck: one
// tentative absolute firing time per channel held in an indexed min-heap,
// with only the channels that depend on the fired one rescheduled after each
// event. Previously drawn waiting times are reused via rescaling, so each
// event consumes O(|D| log M) work and at most |D| fresh random numbers.
type Aggregator struct {
	ma    *MassActionSystem
	fn    []FunctionChannel
	numMA int

	deps    DependencyGraph
	sampler ExpSampler
	logger  Logger

	curRates []float64
	pq       *jumpQueue

	nextJumpTime float64
	nextJump     int
	prevJump     int
	endTime      float64
}

// NewAggregator validates the configuration and builds the aggregator. The
// dependency graph is resolved here, once; it is read-only afterwards.
func NewAggregator(cfg AggregatorConfig) (*Aggregator, error) {
	numMA := cfg.MassAction.NumReactions()
	total := numMA + len(cfg.Function)
	if total == 0 {
		return nil, fmt.Errorf("model has no channels")
	}
	if cfg.Sampler == nil {
		return nil, fmt.Errorf("aggregator requires an ExpSampler")
	}
	for i, fc := range cfg.Function {
		if fc.Rate == nil || fc.Affect == nil {
			return nil, fmt.Errorf("function channel %d is missing a rate or affect", numMA+i)
		}
	}

	deps, err := BuildDependencyGraph(cfg.MassAction, len(cfg.Function), cfg.Dependencies)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NewNoOpLogger()
	}

	return &Aggregator{
		ma:       cfg.MassAction,
		fn:       cfg.Function,
		numMA:    numMA,
		deps:     deps,
		sampler:  cfg.Sampler,
		logger:   logger,
		curRates: make([]float64, total),
		prevJump: -1,
	}, nil
}

// NumChannels returns the total channel count.
func (a *Aggregator) NumChannels() int {
	return len(a.curRates)
}

// Dependents returns the channels rescheduled when id fires, in the order
// they are visited (ascending channel id). The returned slice is shared;
// callers must not mutate it.
func (a *Aggregator) Dependents(id int) []int {
	return a.deps[id]
}

// CurrentRate returns the intensity recorded for a channel at its last
// evaluation point.
func (a *Aggregator) CurrentRate(id int) float64 {
	return a.curRates[id]
}

// ScheduledTime returns the absolute time at which a channel would next fire
// if nothing else fires first. +Inf for channels with zero rate.
func (a *Aggregator) ScheduledTime(id int) float64 {
	return a.pq.Read(id)
}

// ChannelName returns the declared name of a channel, or a positional
// fallback.
func (a *Aggregator) ChannelName(id int) string {
	var name string
	if id < a.numMA {
		name = a.ma.Reaction(id).Name
	} else {
		name = a.fn[id-a.numMA].Name
	}
	if name == "" {
		name = fmt.Sprintf("channel-%d", id)
	}
	return name
}

// Initialize evaluates every channel's rate at (u, p, t), draws one
// independent Exp(1) per channel, and builds the firing-time queue. The
// simulation horizon is read from the integrator handle here and never
// again.
func (a *Aggregator) Initialize(integ Integrator, u []float64, p any, t float64) error {
	a.endTime = integ.EndTime()
	a.prevJump = -1

	times := make([]float64, len(a.curRates))
	for i := range a.curRates {
		rate, err := a.evalRate(i, u, p, t)
		if err != nil {
			return err
		}
		a.curRates[i] = rate
		if rate > 0 {
			times[i] = t + a.sampler.RandExp()/rate
		} else {
			times[i] = math.Inf(1)
		}
	}
	a.pq = newJumpQueue(times)
	a.nextJumpTime, a.nextJump = a.pq.PeekMin()
	a.logger.Debugf("initialized %d channels, first jump %v (channel %d)", len(times), a.nextJumpTime, a.nextJump)
	return nil
}

// PeekNext reports the earliest scheduled (time, channel) pair. It does not
// modify any state; the host compares the time against the horizon to decide
// whether to step.
func (a *Aggregator) PeekNext() (float64, int) {
	return a.pq.PeekMin()
}

// EndTime returns the horizon recorded at initialization.
func (a *Aggregator) EndTime() float64 {
	return a.endTime
}

// ExecuteJump fires the pending channel: its affect mutates u first, then
// every dependent channel's rate is re-evaluated and rescheduled. The queue
// is fully consistent when ExecuteJump returns. t must be the time reported
// by PeekNext.
func (a *Aggregator) ExecuteJump(integ Integrator, u []float64, p any, t float64) error {
	id := a.nextJump
	if id < a.numMA {
		a.ma.ApplyChange(u, id)
	} else {
		a.fn[id-a.numMA].Affect(integ)
	}
	a.prevJump = id

	if err := a.updateDependentRates(u, p, t); err != nil {
		return err
	}
	a.nextJumpTime, a.nextJump = a.pq.PeekMin()
	return nil
}

// updateDependentRates visits D(prevJump) in ascending channel id. The order
// is load-bearing: fresh exponentials are drawn inside the loop, so a fixed
// iteration order is what makes equal seeds give equal trajectories.
func (a *Aggregator) updateDependentRates(u []float64, p any, t float64) error {
	for _, rx := range a.deps[a.prevJump] {
		oldRate := a.curRates[rx]
		newRate, err := a.evalRate(rx, u, p, t)
		if err != nil {
			return err
		}
		a.curRates[rx] = newRate
		if err := a.pq.Update(rx, a.reschedule(rx, oldRate, newRate, t)); err != nil {
			return err
		}
	}
	return nil
}

// reschedule computes a channel's new absolute firing time after its rate
// changed from oldRate to newRate at time t.
//
// The fired channel draws a fresh exponential. A channel that did not fire
// and had a positive rate keeps its drawn waiting time, linearly rescaled by
// the rate ratio, preserving the conditional distribution of its firing
// time. A channel coming up from rate zero has no waiting time to rescale
// and draws fresh.
func (a *Aggregator) reschedule(rx int, oldRate, newRate, t float64) float64 {
	switch {
	case rx == a.prevJump:
		if newRate > 0 {
			return t + a.sampler.RandExp()/newRate
		}
		return math.Inf(1)
	case oldRate > 0:
		if newRate > 0 {
			return t + (oldRate/newRate)*(a.pq.Read(rx)-t)
		}
		return math.Inf(1)
	default:
		if newRate > 0 {
			return t + a.sampler.RandExp()/newRate
		}
		return math.Inf(1)
	}
}

// evalRate dispatches on the channel kind and rejects negative or NaN
// intensities at the evaluation site.
func (a *Aggregator) evalRate(id int, u []float64, p any, t float64) (float64, error) {
	var rate float64
	if id < a.numMA {
		rate = a.ma.EvalRate(u, id)
	} else {
		rate = a.fn[id-a.numMA].Rate(u, p, t)
	}
	if !validRate(rate) {
		return 0, invalidRateError(id, rate)
	}
	return rate, nil
}
