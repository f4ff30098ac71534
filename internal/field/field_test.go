package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

func TestExtractDropsNegligibleCoherence(t *testing.T) {
	results := map[atoms.Organ]organs.Result{
		atoms.Listening: {Coherence: 0.005, AtomActivations: map[string]float64{"x": 1}},
		atoms.Empathy:   {Coherence: 0.6, Lure: 0.5, AtomActivations: map[string]float64{"y": 1}},
	}
	fields := Extract(results)

	_, hasListening := fields[atoms.Listening]
	assert.False(t, hasListening)

	empathy, ok := fields[atoms.Empathy]
	require.True(t, ok)
	assert.InDelta(t, 1*(0.5+0.5*0.5)*0.6, empathy.Activations["y"], 1e-9)
}

func TestActivateMetaAtomsAddsMeanContributionWhenEligible(t *testing.T) {
	cat, err := atoms.Load(organs.EmbeddingDim)
	require.NoError(t, err)

	metas := cat.MetaAtoms()
	require.NotEmpty(t, metas)
	target := metas[0]

	results := make(map[atoms.Organ]organs.Result)
	for _, o := range target.MetaOf {
		atom := cat.AtomsFor(o)[0]
		results[o] = organs.Result{Coherence: 0.9, Lure: 1.0, AtomActivations: map[string]float64{atom.Name: 0.8}}
	}
	fields := Extract(results)

	ActivateMetaAtoms(fields, cat, 0.5, 0.3)

	for _, o := range target.MetaOf {
		assert.Contains(t, fields[o].Activations, target.Name)
	}
}

func TestActivateMetaAtomsSkipsWhenBelowBridgeThreshold(t *testing.T) {
	cat, err := atoms.Load(organs.EmbeddingDim)
	require.NoError(t, err)

	metas := cat.MetaAtoms()
	require.NotEmpty(t, metas)
	target := metas[0]

	results := make(map[atoms.Organ]organs.Result)
	for i, o := range target.MetaOf {
		coherence := 0.9
		if i == 0 {
			coherence = 0.1 // below bridgeThreshold
		}
		atom := cat.AtomsFor(o)[0]
		results[o] = organs.Result{Coherence: coherence, Lure: 1.0, AtomActivations: map[string]float64{atom.Name: 0.8}}
	}
	fields := Extract(results)

	ActivateMetaAtoms(fields, cat, 0.5, 0.3)

	for _, o := range target.MetaOf {
		if f, ok := fields[o]; ok {
			assert.NotContains(t, f.Activations, target.Name)
		}
	}
}
