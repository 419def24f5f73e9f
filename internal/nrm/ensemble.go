package nrm

import (
	"fmt"
	"sync"
)

// EnsembleManager runs and retains many independent trajectories of one
// model. Seeds are split deterministically (base seed + run index), so an
// ensemble is reproducible as a whole.
type EnsembleManager struct {
	mu    sync.RWMutex
	model *Model
	opts  SimulatorOptions
	runs  map[string]*Trajectory
}

// NewEnsembleManager creates a manager for the given model and per-run
// options. opts.Seed is the base seed for the split.
func NewEnsembleManager(model *Model, opts SimulatorOptions) *EnsembleManager {
	return &EnsembleManager{
		model: model,
		opts:  opts,
		runs:  make(map[string]*Trajectory),
	}
}

// RunMany executes n independent trajectories sequentially and retains each
// result. Returned trajectories are ordered by run index.
func (em *EnsembleManager) RunMany(n int) ([]*Trajectory, error) {
	trajectories := make([]*Trajectory, 0, n)
	for i := 0; i < n; i++ {
		opts := em.opts
		opts.Seed = em.opts.Seed + int64(i)
		sim, err := NewSimulator(em.model, opts)
		if err != nil {
			return nil, fmt.Errorf("ensemble run %d: %w", i, err)
		}
		traj, err := sim.Run()
		if err != nil {
			return nil, fmt.Errorf("ensemble run %d: %w", i, err)
		}

		em.mu.Lock()
		em.runs[traj.RunID] = traj
		em.mu.Unlock()
		trajectories = append(trajectories, traj)
	}
	return trajectories, nil
}

// Retain stores a trajectory produced outside RunMany, e.g. by a serve
// session, so it is visible through GetRun and ListRuns.
func (em *EnsembleManager) Retain(traj *Trajectory) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.runs[traj.RunID] = traj
}

// GetRun retrieves a retained trajectory by run id.
func (em *EnsembleManager) GetRun(id string) (*Trajectory, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	traj, ok := em.runs[id]
	return traj, ok
}

// ListRuns returns the ids of all retained trajectories.
func (em *EnsembleManager) ListRuns() []string {
	em.mu.RLock()
	defer em.mu.RUnlock()
	ids := make([]string, 0, len(em.runs))
	for id := range em.runs {
		ids = append(ids, id)
	}
	return ids
}

// DeleteRun discards a retained trajectory.
func (em *EnsembleManager) DeleteRun(id string) error {
	em.mu.Lock()
	defer em.mu.Unlock()
	if _, ok := em.runs[id]; !ok {
		return fmt.Errorf("run %s does not exist", id)
	}
	delete(em.runs, id)
	return nil
}

// MeanFinalState averages the final state across trajectories. All
// trajectories must share a state width.
func MeanFinalState(trajectories []*Trajectory) []float64 {
	if len(trajectories) == 0 {
		return nil
	}
	mean := make([]float64, len(trajectories[0].FinalState()))
	for _, traj := range trajectories {
		for i, v := range traj.FinalState() {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(trajectories))
	}
	return mean
}
