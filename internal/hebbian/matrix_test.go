package hebbian

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
)

func TestNewMatrixInitialState(t *testing.T) {
	m := New(1.0)
	assert.Equal(t, 0.0, m.Get(atoms.Listening, atoms.Listening))
	assert.InDelta(t, 0.05, m.Get(atoms.Listening, atoms.Empathy), 1e-9)
	assert.Equal(t, m.Get(atoms.Listening, atoms.Empathy), m.Get(atoms.Empathy, atoms.Listening))
}

func TestUpdateIsSymmetricAndClipped(t *testing.T) {
	m := New(1.0)
	coherence := make(map[atoms.Organ]float64, len(atoms.All))
	for _, o := range atoms.All {
		coherence[o] = 1.0
	}
	for i := 0; i < 200; i++ {
		m.Update(coherence, 0.5, GatePositive)
	}
	for _, a := range atoms.All {
		for _, b := range atoms.All {
			v := m.Get(a, b)
			assert.LessOrEqual(t, v, 1.0)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Equal(t, v, m.Get(b, a))
		}
		assert.Equal(t, 0.0, m.Get(a, a))
	}
}

func TestUpdateNeutralGateNoOp(t *testing.T) {
	m := New(1.0)
	before := m.Snapshot()
	coherence := map[atoms.Organ]float64{atoms.Listening: 1, atoms.Empathy: 1}
	m.Update(coherence, 0.5, GateNeutral)
	if diff := cmp.Diff(before, m.Snapshot()); diff != "" {
		t.Errorf("neutral gate mutated the matrix (-before +after):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := New(1.0)
	coherence := map[atoms.Organ]float64{atoms.Listening: 0.9, atoms.Empathy: 0.8}
	m.Update(coherence, 0.1, GatePositive)

	path := filepath.Join(t.TempDir(), "hebbian_r_matrix.json")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(m.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Errorf("round-tripped matrix differs (-saved +loaded):\n%s", diff)
	}

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestStdDev(t *testing.T) {
	m := New(1.0)
	assert.GreaterOrEqual(t, m.StdDev(), 0.0)
}
