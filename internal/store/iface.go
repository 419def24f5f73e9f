// iface.go defines the StoreInterface for dependency injection and testing.
//
// The concrete *Store type satisfies this interface. Code that persists
// trajectories (the cmd layer) can accept StoreInterface instead of *Store,
// enabling mock injection in tests.
package store

import "github.com/daniacca/nextreaction/internal/nrm"

// RunRecord is one persisted simulation run.
type RunRecord struct {
	ID        string
	Model     string
	Seed      int64
	Jumps     int
	FinalTime float64
	CreatedAt string
}

// JumpRecord is one persisted trajectory sample.
type JumpRecord struct {
	RunID   string
	Seq     int
	Time    float64
	Channel int
	State   []float64
}

// StoreInterface defines the full set of store operations.
type StoreInterface interface {
	// Close closes the database connection.
	Close() error

	// SaveTrajectory persists a run and all of its saved points atomically.
	SaveTrajectory(tr *nrm.Trajectory) error

	// GetRun retrieves run metadata by id.
	GetRun(id string) (*RunRecord, error)

	// ListRuns returns all runs, newest first.
	ListRuns() ([]RunRecord, error)

	// ListJumps returns a run's saved points in sequence order.
	ListJumps(runID string) ([]JumpRecord, error)

	// DeleteRun removes a run and its points.
	DeleteRun(id string) error
}
