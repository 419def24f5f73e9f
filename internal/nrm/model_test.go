package nrm

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadModelFromExamples builds a model from the examples directory.
func loadModelFromExamples(t *testing.T, filename string) *Model {
	t.Helper()
	path := filepath.Join("..", "..", "examples", "models", filename)
	cfg, err := LoadModelConfig(path)
	require.NoError(t, err)
	model, err := BuildModelFromConfig(cfg)
	require.NoError(t, err)
	return model
}

func TestModel_Chaining(t *testing.T) {
	model := NewModel("demo").
		WithSpecies(Species{Name: "A", Initial: 3}, Species{Name: "B", Initial: 1}).
		WithMassAction(MassActionReaction{Name: "rx", RateConst: 1})

	assert.Equal(t, 2, model.NumSpecies())
	assert.Equal(t, 1, model.NumChannels())
	assert.Equal(t, []float64{3, 1}, model.InitialState())

	idx, ok := model.SpeciesIndexByName("B")
	require.True(t, ok)
	assert.Equal(t, SpeciesIndex(1), idx)

	_, ok = model.SpeciesIndexByName("missing")
	assert.False(t, ok)
}

func TestModel_DuplicateSpeciesIgnored(t *testing.T) {
	model := NewModel("demo").
		WithSpecies(Species{Name: "A", Initial: 3}).
		WithSpecies(Species{Name: "A", Initial: 9})

	assert.Equal(t, 1, model.NumSpecies())
	assert.Equal(t, []float64{3}, model.InitialState())
}

func TestModel_InitialStateIsFresh(t *testing.T) {
	model := NewModel("demo").WithSpecies(Species{Name: "A", Initial: 5})

	u := model.InitialState()
	u[0] = 0
	assert.Equal(t, []float64{5}, model.InitialState(), "mutating one state must not leak into the next")
}

func TestModel_SummaryGolden(t *testing.T) {
	model := loadModelFromExamples(t, "birth-death.yaml")

	g := goldie.New(t)
	g.Assert(t, "birth-death-summary", []byte(model.Summary()))
}

func TestModel_AggregatorFromExample(t *testing.T) {
	model := loadModelFromExamples(t, "dimerization.yaml")

	agg, err := model.Aggregator(NewExpSampler(7), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.NumChannels())
	assert.Equal(t, "bind", agg.ChannelName(0))
	assert.Equal(t, "unbind", agg.ChannelName(1))
}
