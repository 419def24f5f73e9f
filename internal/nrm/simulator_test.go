package nrm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decayModel(initial float64) *Model {
	return NewModel("decay").
		WithSpecies(Species{Name: "A", Initial: initial}).
		WithMassAction(MassActionReaction{
			Name:      "death",
			RateConst: 1,
			Reactants: []Reactant{{Species: 0, Count: 1}},
			NetStoich: []StoichChange{{Species: 0, Delta: -1}},
		})
}

func birthDeathModel(lambda, mu float64) *Model {
	return NewModel("birth-death").
		WithSpecies(Species{Name: "A", Initial: 0}).
		WithMassAction(
			MassActionReaction{
				Name:      "birth",
				RateConst: lambda,
				NetStoich: []StoichChange{{Species: 0, Delta: 1}},
			},
			MassActionReaction{
				Name:      "death",
				RateConst: mu,
				Reactants: []Reactant{{Species: 0, Count: 1}},
				NetStoich: []StoichChange{{Species: 0, Delta: -1}},
			},
		)
}

func TestSimulator_PureDecayExhausts(t *testing.T) {
	sim, err := NewSimulator(decayModel(5), SimulatorOptions{
		EndTime: math.Inf(1),
		Seed:    99,
		Save:    SavePositions{Post: true},
	})
	require.NoError(t, err)

	traj, err := sim.Run()
	require.NoError(t, err)

	// Five copies, five deaths, then nothing left to fire.
	assert.Equal(t, 5, traj.Jumps)
	assert.Equal(t, []float64{0}, traj.FinalState())
	tm, _ := sim.Aggregator().PeekNext()
	assert.True(t, math.IsInf(tm, 1))

	// Initial sample plus one post-jump sample per event.
	require.Len(t, traj.Points, 6)
	assert.Equal(t, -1, traj.Points[0].Channel)
	for i := 1; i < 6; i++ {
		assert.Equal(t, 0, traj.Points[i].Channel)
		assert.Equal(t, float64(5-i), traj.Points[i].State[0])
	}
}

func TestSimulator_Determinism(t *testing.T) {
	run := func() *Trajectory {
		sim, err := NewSimulator(birthDeathModel(10, 1), SimulatorOptions{
			EndTime: 20,
			Seed:    42,
			Save:    SavePositions{Post: true},
		})
		require.NoError(t, err)
		traj, err := sim.Run()
		require.NoError(t, err)
		return traj
	}

	a, b := run(), run()
	require.Equal(t, a.Jumps, b.Jumps)
	require.Len(t, b.Points, len(a.Points))
	for i := range a.Points {
		assert.Equal(t, a.Points[i].Time, b.Points[i].Time, "point %d time", i)
		assert.Equal(t, a.Points[i].Channel, b.Points[i].Channel, "point %d channel", i)
		assert.Equal(t, a.Points[i].State, b.Points[i].State, "point %d state", i)
	}
}

func TestSimulator_SeedsDiverge(t *testing.T) {
	run := func(seed int64) *Trajectory {
		sim, err := NewSimulator(birthDeathModel(10, 1), SimulatorOptions{
			EndTime: 20,
			Seed:    seed,
			Save:    SavePositions{Post: true},
		})
		require.NoError(t, err)
		traj, err := sim.Run()
		require.NoError(t, err)
		return traj
	}

	assert.NotEqual(t, run(1).Points, run(2).Points)
}

func TestSimulator_MonotoneClock(t *testing.T) {
	sim, err := NewSimulator(birthDeathModel(10, 1), SimulatorOptions{
		EndTime: 20,
		Seed:    7,
		Save:    SavePositions{Post: true},
	})
	require.NoError(t, err)
	traj, err := sim.Run()
	require.NoError(t, err)

	prev := 0.0
	for i, pt := range traj.Points {
		require.GreaterOrEqual(t, pt.Time, prev, "point %d", i)
		prev = pt.Time
	}
}

func TestSimulator_SavePre(t *testing.T) {
	sim, err := NewSimulator(decayModel(2), SimulatorOptions{
		EndTime: math.Inf(1),
		Seed:    3,
		Save:    SavePositions{Pre: true, Post: true},
	})
	require.NoError(t, err)
	traj, err := sim.Run()
	require.NoError(t, err)

	// initial + (pre, post) per jump.
	require.Len(t, traj.Points, 1+2*2)
	// The pre sample holds the state before the affect, at the jump time.
	pre, post := traj.Points[1], traj.Points[2]
	assert.Equal(t, pre.Time, post.Time)
	assert.Equal(t, -1, pre.Channel)
	assert.Equal(t, 2.0, pre.State[0])
	assert.Equal(t, 0, post.Channel)
	assert.Equal(t, 1.0, post.State[0])
}

func TestSimulator_MaxJumpsCap(t *testing.T) {
	sim, err := NewSimulator(birthDeathModel(10, 1), SimulatorOptions{
		EndTime:  math.Inf(1),
		Seed:     5,
		MaxJumps: 25,
	})
	require.NoError(t, err)
	traj, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, 25, traj.Jumps)
}

func TestSimulator_RecordsHorizonSample(t *testing.T) {
	sim, err := NewSimulator(birthDeathModel(10, 1), SimulatorOptions{
		EndTime: 5,
		Seed:    11,
		Save:    SavePositions{Post: true},
	})
	require.NoError(t, err)
	traj, err := sim.Run()
	require.NoError(t, err)

	assert.Equal(t, 5.0, traj.FinalTime)
	last := traj.Points[len(traj.Points)-1]
	assert.Equal(t, 5.0, last.Time)
	assert.Equal(t, -1, last.Channel)
}

func TestSimulator_InvalidEndTime(t *testing.T) {
	_, err := NewSimulator(decayModel(1), SimulatorOptions{EndTime: 0})
	assert.Error(t, err)

	_, err = NewSimulator(decayModel(1), SimulatorOptions{EndTime: -3})
	assert.Error(t, err)
}

// The immigration-death process has Poisson(λ/μ) as its stationary law.
// After a long horizon the ensemble mean of the count must sit near λ/μ.
func TestSimulator_StationaryMean(t *testing.T) {
	if testing.Short() {
		t.Skip("Monte Carlo test")
	}

	const (
		lambda = 10.0
		mu     = 1.0
		runs   = 400
	)
	manager := NewEnsembleManager(birthDeathModel(lambda, mu), SimulatorOptions{
		EndTime: 30,
		Seed:    1234,
	})
	trajectories, err := manager.RunMany(runs)
	require.NoError(t, err)

	mean := MeanFinalState(trajectories)
	require.Len(t, mean, 1)
	// Std of the ensemble mean is sqrt(10/400) ≈ 0.16; a tolerance of 1.0
	// is over six sigma.
	assert.InDelta(t, lambda/mu, mean[0], 1.0)
}
