package nrm

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// SavePositions selects which samples a run stores: the state immediately
// before each jump, immediately after, or both.
type SavePositions struct {
	Pre  bool
	Post bool
}

// SimulatorOptions configures a single run.
type SimulatorOptions struct {
	EndTime float64
	Seed    int64
	Save    SavePositions

	// MaxJumps bounds the number of events; 0 means unbounded.
	MaxJumps int

	// Params is threaded through rate evaluations unchanged.
	Params any

	Logger Logger

	// Notifications, when set, receives one JumpEvent per fired channel,
	// routed to NotifierIDs.
	Notifications *NotificationManager
	NotifierIDs   []string
}

// Simulator is the host integrator for a pure jump process: it owns the
// state vector and the clock, advances time to the aggregator's next event,
// and lets the fired channel's affect mutate the state. It is the concrete
// Integrator handed to affect functions.
type Simulator struct {
	model *Model
	agg   *Aggregator

	runID   string
	seed    int64
	u       []float64
	params  any
	t       float64
	endTime float64

	save     SavePositions
	maxJumps int
	logger   Logger

	notifMgr    *NotificationManager
	notifierIDs []string
}

// NewSimulator builds a simulator for one trajectory of the model. Each
// simulator owns a dedicated sampler seeded from opts.Seed, so identical
// seeds reproduce identical trajectories.
func NewSimulator(model *Model, opts SimulatorOptions) (*Simulator, error) {
	if model.NumSpecies() == 0 {
		return nil, fmt.Errorf("model %s declares no species", model.Name)
	}
	if opts.EndTime <= 0 && !math.IsInf(opts.EndTime, 1) {
		return nil, fmt.Errorf("end time must be positive, got %v", opts.EndTime)
	}
	logger := opts.Logger
	if logger == nil {
		logger = NewNoOpLogger()
	}

	agg, err := model.Aggregator(NewExpSampler(opts.Seed), logger)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		model:       model,
		agg:         agg,
		runID:       uuid.NewString(),
		seed:        opts.Seed,
		u:           model.InitialState(),
		params:      opts.Params,
		endTime:     opts.EndTime,
		save:        opts.Save,
		maxJumps:    opts.MaxJumps,
		logger:      logger,
		notifMgr:    opts.Notifications,
		notifierIDs: opts.NotifierIDs,
	}, nil
}

// Integrator interface.

func (s *Simulator) State() []float64 { return s.u }
func (s *Simulator) Params() any      { return s.params }
func (s *Simulator) Time() float64    { return s.t }
func (s *Simulator) EndTime() float64 { return s.endTime }

// RunID returns the identifier assigned to this run.
func (s *Simulator) RunID() string { return s.runID }

// Aggregator exposes the underlying aggregator, mainly for inspection in
// tests and diagnostics.
func (s *Simulator) Aggregator() *Aggregator { return s.agg }

// Run simulates a full trajectory: initialize all channel schedules, then
// repeatedly advance to the earliest event and fire it, until the horizon is
// reached or no finite event remains.
func (s *Simulator) Run() (*Trajectory, error) {
	traj := newTrajectory(s.runID, s.model.Name, s.seed)

	if err := s.agg.Initialize(s, s.u, s.params, s.t); err != nil {
		return nil, err
	}
	traj.record(s.t, -1, s.u)

	for {
		tNext, id := s.agg.PeekNext()
		if id < 0 || math.IsInf(tNext, 1) || tNext >= s.endTime {
			break
		}
		if s.maxJumps > 0 && traj.Jumps >= s.maxJumps {
			s.logger.Warnf("run %s: stopping at jump cap %d (t=%v)", s.runID, s.maxJumps, s.t)
			break
		}

		s.t = tNext
		if s.save.Pre {
			traj.record(s.t, -1, s.u)
		}
		if err := s.agg.ExecuteJump(s, s.u, s.params, s.t); err != nil {
			return nil, fmt.Errorf("run %s: jump %d: %w", s.runID, traj.Jumps, err)
		}
		traj.Jumps++
		if s.save.Post {
			traj.record(s.t, id, s.u)
		}
		s.notify(traj.Jumps, id)
	}

	if !math.IsInf(s.endTime, 1) {
		traj.FinalTime = s.endTime
		traj.record(s.endTime, -1, s.u)
	} else {
		traj.FinalTime = s.t
	}
	s.logger.Infof("run %s: %d jumps, final time %v", s.runID, traj.Jumps, traj.FinalTime)
	return traj, nil
}

func (s *Simulator) notify(seq, channel int) {
	if s.notifMgr == nil || len(s.notifierIDs) == 0 {
		return
	}
	s.notifMgr.Enqueue(JumpEvent{
		RunID:       s.runID,
		Seq:         seq,
		Time:        s.t,
		Channel:     channel,
		ChannelName: s.agg.ChannelName(channel),
		State:       append([]float64(nil), s.u...),
	}, s.notifierIDs)
}
