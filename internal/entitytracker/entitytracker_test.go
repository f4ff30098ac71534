package entitytracker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
)

func baseObservation() Observation {
	coherence := make(map[atoms.Organ]float64, len(atoms.All))
	for _, o := range atoms.All {
		coherence[o] = 0.5
	}
	return Observation{
		OrganCoherence: coherence,
		Zone:           "Z2_inner_relational",
		Polyvagal:      "ventral",
		Urgency:        0.2,
		V0:             0.4,
		Satisfied:      true,
	}
}

func TestObserveCreatesAssociation(t *testing.T) {
	tr := New(0.15)
	tr.Observe("user-1", []string{"mom"}, baseObservation())

	a, ok := tr.Lookup("user-1", "mom")
	require.True(t, ok)
	assert.Equal(t, 1, a.MentionCount)
	assert.Equal(t, 1, a.SuccessCount)
	assert.InDelta(t, 1.0, a.SuccessRate(), 1e-9)
}

func TestObserveTracksCoMentions(t *testing.T) {
	tr := New(0.15)
	tr.Observe("user-1", []string{"mom", "dad"}, baseObservation())

	a, ok := tr.Lookup("user-1", "mom")
	require.True(t, ok)
	assert.Equal(t, 1, a.CoMentions["dad"])
}

func TestPredictBoostAveragesKnownEntities(t *testing.T) {
	tr := New(0.15)
	tr.Observe("user-1", []string{"mom"}, baseObservation())
	tr.Observe("user-1", []string{"dad"}, baseObservation())

	boost := tr.PredictBoost("user-1", []string{"mom", "dad", "stranger"})
	assert.InDelta(t, 0.5, boost[atoms.Listening], 1e-9)
}

func TestPredictBoostUnknownUserReturnsEmpty(t *testing.T) {
	tr := New(0.15)
	boost := tr.PredictBoost("nobody", []string{"x"})
	assert.Empty(t, boost)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tr := New(0.15)
	tr.Observe("user-1", []string{"mom"}, baseObservation())

	path := filepath.Join(t.TempDir(), "entity_organ_associations.json")
	require.NoError(t, tr.Save(path))

	loaded, err := Load(path, 0.15)
	require.NoError(t, err)

	a, ok := loaded.Lookup("user-1", "mom")
	require.True(t, ok)
	assert.Equal(t, 1, a.MentionCount)
}
