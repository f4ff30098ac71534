package prehension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

func TestRunReturnsOneResultPerOrgan(t *testing.T) {
	cat, err := atoms.Load(organs.EmbeddingDim)
	require.NoError(t, err)
	roster := organs.NewAll(cat)

	results := Run(roster, cat, organs.Context{UserInput: "I feel overwhelmed and scared right now."})

	assert.Len(t, results, len(atoms.All))
	for _, o := range atoms.All {
		_, ok := results[o]
		assert.True(t, ok, "missing result for organ %s", o)
	}
}

func TestRunDefaultsNilContext(t *testing.T) {
	cat, err := atoms.Load(organs.EmbeddingDim)
	require.NoError(t, err)
	roster := organs.NewAll(cat)

	assert.NotPanics(t, func() {
		Run(roster, cat, organs.Context{UserInput: "hello"})
	})
}
