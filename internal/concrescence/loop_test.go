package concrescence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/config"
	"github.com/axo-lotto/dae-hyphae/internal/hebbian"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

func TestRunStopsWithinMaxCycles(t *testing.T) {
	cat, err := atoms.Load(organs.EmbeddingDim)
	require.NoError(t, err)

	cfg := config.Default()
	roster := organs.NewAll(cat)
	rMatrix := hebbian.New(cfg.HebbianRMax)

	base := organs.Context{UserInput: "I keep thinking about what happened yesterday."}
	outcome := Run(cfg, roster, cat, rMatrix, base)

	assert.LessOrEqual(t, len(outcome.Occasions), cfg.MaxCycles)
	assert.NotEmpty(t, outcome.Occasions)
	assert.Contains(t, []string{"kairos", "energy_stable", "crystallization", "max_cycles"}, outcome.ConvergenceReason)
	assert.NotNil(t, outcome.FinalOrganResults)
	assert.Len(t, outcome.FinalOrganResults, len(atoms.All))
}

func TestTieredThreshold(t *testing.T) {
	assert.InDelta(t, 0.3*0.60, tieredThreshold(0.3, 0.75), 1e-9)
	assert.InDelta(t, 0.3*0.80, tieredThreshold(0.3, 0.55), 1e-9)
	assert.Equal(t, 0.3, tieredThreshold(0.3, 0.40))
}

func TestSalienceOfClipped(t *testing.T) {
	results := map[atoms.Organ]organs.Result{
		atoms.Ndam: {NDAM: &organs.NDAMDetail{UrgencyLevel: 2.0}},
		atoms.Eo:   {Coherence: 2.0},
	}
	assert.Equal(t, 1.0, salienceOf(results))
}
