package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteThenReadJSONRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "thing.json")

	require.NoError(t, WriteJSON(path, payload{Name: "hebbian", Count: 12}))

	var out payload
	ok, err := ReadJSON(path, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload{Name: "hebbian", Count: 12}, out)
}

func TestReadJSONMissingFileIsNotAnError(t *testing.T) {
	var out payload
	ok, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteJSONOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thing.json")
	require.NoError(t, WriteJSON(path, payload{Name: "first", Count: 1}))
	require.NoError(t, WriteJSON(path, payload{Name: "second", Count: 2}))

	var out payload
	ok, err := ReadJSON(path, &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", out.Name)
}
