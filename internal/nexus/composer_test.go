package nexus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/field"
	"github.com/axo-lotto/dae-hyphae/internal/hebbian"
)

func TestComposeRequiresAtLeastTwoOrgans(t *testing.T) {
	fields := map[atoms.Organ]*field.SemanticField{
		atoms.Empathy: {Organ: atoms.Empathy, Activations: map[string]float64{"solo_atom": 0.9}},
	}
	rMatrix := hebbian.New(1.0)

	out := Compose(fields, rMatrix, 0.3, 0.5, 0.1)
	assert.Empty(t, out)
}

func TestComposeBuildsNexusWhenTwoOrgansAgree(t *testing.T) {
	fields := map[atoms.Organ]*field.SemanticField{
		atoms.Empathy:  {Organ: atoms.Empathy, Activations: map[string]float64{"shared_atom": 0.8}},
		atoms.Presence: {Organ: atoms.Presence, Activations: map[string]float64{"shared_atom": 0.7}},
	}
	rMatrix := hebbian.New(1.0)

	out := Compose(fields, rMatrix, 0.3, 0.5, 0.1)
	assert := assert.New(t)
	assert.Len(out, 1)
	assert.Equal("shared_atom", out[0].Atom)
	assert.ElementsMatch([]atoms.Organ{atoms.Empathy, atoms.Presence}, out[0].Participants)
	assert.Greater(out[0].EmissionReadiness, 0.0)
}

func TestComposeSortsDescendingByIntersectionStrength(t *testing.T) {
	fields := map[atoms.Organ]*field.SemanticField{
		atoms.Empathy:      {Organ: atoms.Empathy, Activations: map[string]float64{"weak": 0.31, "strong": 0.9}},
		atoms.Presence:     {Organ: atoms.Presence, Activations: map[string]float64{"weak": 0.31, "strong": 0.9}},
		atoms.Authenticity: {Organ: atoms.Authenticity, Activations: map[string]float64{"weak": 0.31, "strong": 0.9}},
	}
	rMatrix := hebbian.New(1.0)

	out := Compose(fields, rMatrix, 0.3, 0.5, 0.1)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].IntersectionStrength, out[i].IntersectionStrength)
	}
}

func TestSelectTopTrimsToK(t *testing.T) {
	candidates := []Nexus{
		{Atom: "a", EmissionReadiness: 0.9, TherapeuticStance: StanceWitness},
		{Atom: "b", EmissionReadiness: 0.8, TherapeuticStance: StanceWitness},
		{Atom: "c", EmissionReadiness: 0.7, TherapeuticStance: StanceWitness},
	}
	out := SelectTop(candidates, 2, 0.0)
	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Atom)
}

func TestSelectTopPrefersLessIntrusiveWithinEpsilon(t *testing.T) {
	candidates := []Nexus{
		{Atom: "intrusive", EmissionReadiness: 0.80, TherapeuticStance: StanceMinimal},
		{Atom: "gentle", EmissionReadiness: 0.79, TherapeuticStance: StanceHold},
	}
	out := SelectTop(candidates, 2, 0.05)
	assert.Equal(t, "gentle", out[0].Atom)
}
