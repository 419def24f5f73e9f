package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniacca/nextreaction/internal/nrm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTrajectory(runID string) *nrm.Trajectory {
	return &nrm.Trajectory{
		RunID:     runID,
		Model:     "birth-death",
		Seed:      42,
		Jumps:     2,
		FinalTime: 1.5,
		Points: []nrm.TrajectoryPoint{
			{Time: 0, Channel: -1, State: []float64{5}},
			{Time: 0.7, Channel: 0, State: []float64{4}},
			{Time: 1.3, Channel: 0, State: []float64{3}},
		},
	}
}

func TestStore_SaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTrajectory(testTrajectory("run-1")))

	run, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "birth-death", run.Model)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, 2, run.Jumps)
	assert.Equal(t, 1.5, run.FinalTime)
	assert.NotEmpty(t, run.CreatedAt)
}

func TestStore_GetRunMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun("nope")
	assert.Error(t, err)
}

func TestStore_DuplicateRunFails(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTrajectory(testTrajectory("run-1")))
	assert.Error(t, s.SaveTrajectory(testTrajectory("run-1")))
}

func TestStore_ListJumps(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTrajectory(testTrajectory("run-1")))

	points, err := s.ListJumps("run-1")
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, 0, points[0].Seq)
	assert.Equal(t, -1, points[0].Channel)
	assert.Equal(t, []float64{5}, points[0].State)
	assert.Equal(t, 0.7, points[1].Time)
	assert.Equal(t, []float64{3}, points[2].State)
}

func TestStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTrajectory(testTrajectory("run-1")))
	require.NoError(t, s.SaveTrajectory(testTrajectory("run-2")))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_DeleteRun(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTrajectory(testTrajectory("run-1")))

	require.NoError(t, s.DeleteRun("run-1"))
	_, err := s.GetRun("run-1")
	assert.Error(t, err)

	points, err := s.ListJumps("run-1")
	require.NoError(t, err)
	assert.Empty(t, points)

	assert.Error(t, s.DeleteRun("run-1"))
}
