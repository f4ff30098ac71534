package epoch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/config"
)

func strongObservation() Observation {
	return Observation{
		WordOrganActivations: map[string]map[atoms.Organ]float64{
			"scared": {atoms.Eo: 1, atoms.Ndam: 1},
		},
		CycleConvergenceBucket: "ventral:low",
		CycleConvergenceSpeed:  1,
		GatePass: map[atoms.Organ]bool{
			atoms.Eo:   true,
			atoms.Ndam: true,
		},
		NexusWon:               true,
		NexusAccuracy:          1,
		NexusProcessingSeconds: 0.05,
		NeighborOrganBoost: map[string]map[atoms.Organ]float64{
			"L:|R:today": {atoms.Eo: 1},
		},
		OrganConfidence: map[atoms.Organ]float64{
			atoms.Eo:   1,
			atoms.Ndam: 1,
		},
	}
}

func TestNewStartsExploring(t *testing.T) {
	o := New(0.1)
	assert.Equal(t, "EXPLORING", o.Regime())
}

func TestRecordPromotesOnStrongSignal(t *testing.T) {
	o := New(0.5)
	cfg := config.Default()
	strong := strongObservation()
	for i := 0; i < cfg.RegimeByName("EXPLORING").MinIterations+2; i++ {
		o.Record(strong, cfg)
	}
	assert.NotEqual(t, "EXPLORING", o.Regime())
}

func TestRecordRegressesOnWeakSignal(t *testing.T) {
	o := New(0.5)
	cfg := config.Default()
	strong := strongObservation()
	for i := 0; i < cfg.RegimeByName("EXPLORING").MinIterations+2; i++ {
		o.Record(strong, cfg)
	}
	require.NotEqual(t, "EXPLORING", o.Regime())

	weak := Observation{
		WordOrganActivations: map[string]map[atoms.Organ]float64{
			"scared": {atoms.Eo: 0, atoms.Ndam: 0},
		},
		CycleConvergenceBucket: "ventral:low",
		CycleConvergenceSpeed:  0,
		GatePass: map[atoms.Organ]bool{
			atoms.Eo:   false,
			atoms.Ndam: false,
		},
		NeighborOrganBoost: map[string]map[atoms.Organ]float64{
			"L:|R:today": {atoms.Eo: 0},
		},
		OrganConfidence: map[atoms.Organ]float64{
			atoms.Eo:   0,
			atoms.Ndam: 0,
		},
	}
	for i := 0; i < 20; i++ {
		o.Record(weak, cfg)
	}
	assert.Equal(t, "EXPLORING", o.Regime())
}

func TestEffectiveHebbianRateHalvesAboveCeiling(t *testing.T) {
	o := New(0.1)
	cfg := config.Default()
	base := o.EffectiveHebbianRate(cfg, 0.05)
	halved := o.EffectiveHebbianRate(cfg, 0.50)
	assert.InDelta(t, base/2, halved, 1e-9)
}

func TestOrganConfidenceStdDevReflectsDifferentiation(t *testing.T) {
	o := New(0.5)
	cfg := config.Default()
	o.Record(Observation{OrganConfidence: map[atoms.Organ]float64{atoms.Eo: 0.9, atoms.Ndam: 0.1}}, cfg)
	_, trackers := o.Snapshot()
	assert.Greater(t, trackers.OrganConfidenceStdDev(), 0.08)
}

func TestBottleneckGateFindsLowestPassRate(t *testing.T) {
	o := New(0.5)
	cfg := config.Default()
	o.Record(Observation{GatePass: map[atoms.Organ]bool{atoms.Eo: true, atoms.Ndam: false}}, cfg)
	worst, ok := o.trackers.BottleneckGate()
	require.True(t, ok)
	assert.Equal(t, atoms.Ndam, worst)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	o := New(0.1)
	cfg := config.Default()
	o.Record(Observation{OrganConfidence: map[atoms.Organ]float64{atoms.Eo: 0.8}}, cfg)

	path := filepath.Join(t.TempDir(), "epoch_trackers.json")
	require.NoError(t, o.Save(path))

	loaded, err := Load(path, 0.1)
	require.NoError(t, err)
	assert.Equal(t, o.Regime(), loaded.Regime())
	_, trackers := loaded.Snapshot()
	assert.InDelta(t, 0.8, trackers.OrganConfidence[atoms.Eo].Mean, 1e-9)
}

func TestLoadMissingFileStartsExploring(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"), 0.1)
	require.NoError(t, err)
	assert.Equal(t, "EXPLORING", loaded.Regime())
}
