package nrm

import (
	"encoding/json"
	"fmt"
)

// TrajectoryPoint is one saved (time, state) sample. Channel records which
// channel fired to produce the state, or -1 for points that are not
// post-jump records (the initial condition, pre-jump saves, and the final
// horizon sample).
type TrajectoryPoint struct {
	Time    float64   `json:"time"`
	Channel int       `json:"channel"`
	State   []float64 `json:"state"`
}

// Trajectory is the stored outcome of one simulation run.
type Trajectory struct {
	RunID     string            `json:"run_id"`
	Model     string            `json:"model"`
	Seed      int64             `json:"seed"`
	Jumps     int               `json:"jumps"`
	FinalTime float64           `json:"final_time"`
	Points    []TrajectoryPoint `json:"points"`
}

func newTrajectory(runID, model string, seed int64) *Trajectory {
	return &Trajectory{
		RunID: runID,
		Model: model,
		Seed:  seed,
	}
}

func (tr *Trajectory) record(t float64, channel int, u []float64) {
	tr.Points = append(tr.Points, TrajectoryPoint{
		Time:    t,
		Channel: channel,
		State:   append([]float64(nil), u...),
	})
}

// FinalState returns the state of the last saved point, or nil when nothing
// was saved.
func (tr *Trajectory) FinalState() []float64 {
	if len(tr.Points) == 0 {
		return nil
	}
	return tr.Points[len(tr.Points)-1].State
}

// ValidateTrajectory performs consistency checks on a decoded trajectory:
// non-empty run id, uniform state width, and non-decreasing sample times.
func ValidateTrajectory(tr *Trajectory) error {
	if tr.RunID == "" {
		return fmt.Errorf("trajectory has empty run id")
	}
	width := -1
	prev := 0.0
	for i, pt := range tr.Points {
		if width == -1 {
			width = len(pt.State)
		} else if len(pt.State) != width {
			return fmt.Errorf("point %d has state width %d, expected %d", i, len(pt.State), width)
		}
		if i > 0 && pt.Time < prev {
			return fmt.Errorf("point %d time %v precedes previous time %v", i, pt.Time, prev)
		}
		prev = pt.Time
	}
	return nil
}

// EncodeTrajectoryJSON encodes a trajectory to JSON.
func EncodeTrajectoryJSON(tr *Trajectory) ([]byte, error) {
	data, err := json.Marshal(tr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trajectory: %w", err)
	}
	return data, nil
}

// DecodeTrajectoryJSON decodes a trajectory from JSON.
func DecodeTrajectoryJSON(data []byte) (*Trajectory, error) {
	var tr Trajectory
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode trajectory: %w", err)
	}
	return &tr, nil
}
