package tsk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistThenLoadRoundTrips(t *testing.T) {
	rec := New(t.TempDir())
	satisfaction := 0.8
	want := Record{
		TurnID:            "turn-1",
		UserID:            "user-1",
		Timestamp:         time.Now(),
		UserInput:         "hello",
		CyclesRun:         3,
		ConvergenceReason: "kairos",
		FinalV0:           0.7,
		EmissionText:      "I'm here with you.",
		EmissionPath:      "direct",
		Regime:            "EXPLORING",
		UserSatisfaction:  &satisfaction,
	}

	rec.Persist(want)

	got, ok, err := rec.Load("user-1", "turn-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.EmissionText, got.EmissionText)
	assert.Equal(t, want.ConvergenceReason, got.ConvergenceReason)
	require.NotNil(t, got.UserSatisfaction)
	assert.InDelta(t, 0.8, *got.UserSatisfaction, 1e-9)
}

func TestLoadMissingRecordReturnsNotOK(t *testing.T) {
	rec := New(t.TempDir())
	_, ok, err := rec.Load("nobody", "nothing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistWritesUnderUserDirectory(t *testing.T) {
	base := t.TempDir()
	rec := New(base)
	rec.Persist(Record{TurnID: "t1", UserID: "u1"})

	expected := filepath.Join(base, "u1", "t1.json")
	_, err := os.Stat(expected)
	require.NoError(t, err)
}
