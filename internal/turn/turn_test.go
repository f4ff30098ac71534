package turn

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/config"
	"github.com/axo-lotto/dae-hyphae/internal/entitytracker"
	"github.com/axo-lotto/dae-hyphae/internal/epoch"
	"github.com/axo-lotto/dae-hyphae/internal/family"
	"github.com/axo-lotto/dae-hyphae/internal/hebbian"
	"github.com/axo-lotto/dae-hyphae/internal/ids"
	"github.com/axo-lotto/dae-hyphae/internal/llmclient"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
	"github.com/axo-lotto/dae-hyphae/internal/tsk"
)

func newTestOrganism(t *testing.T) *Organism {
	t.Helper()
	cfg := config.Default()
	cat, err := atoms.Load(organs.EmbeddingDim)
	require.NoError(t, err)

	rMatrix := hebbian.New(cfg.HebbianRMax)
	families := family.New(cfg.FamilyEMAAlpha, cfg.FamilySimilarityInitial, cfg.FamilySimilarityMid, cfg.FamilySimilarityMature, cfg.MinFamilySize, ids.New)
	entities := entitytracker.New(cfg.EntityEMAAlpha)
	epochs := epoch.New(cfg.EpochEMAAlpha)
	recorder := tsk.New(filepath.Join(t.TempDir(), "tsk_records"))

	return New(cfg, cat, rMatrix, families, entities, epochs, recorder, llmclient.Unavailable{})
}

func TestProcessReturnsNonEmptyEmission(t *testing.T) {
	org := newTestOrganism(t)
	result := org.Process(context.Background(), Request{
		UserID:    "user-1",
		UserInput: "I can't stop thinking about what happened with my mom yesterday.",
		Mentioned: []string{"mom"},
	})

	assert.NotEmpty(t, result.TurnID)
	assert.NotEmpty(t, result.EmissionText)
	assert.Greater(t, result.CyclesRun, 0)
	assert.LessOrEqual(t, result.CyclesRun, org.cfg.MaxCycles)
}

func TestProcessSerializesPerUser(t *testing.T) {
	org := newTestOrganism(t)
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			org.Process(context.Background(), Request{UserID: "shared-user", UserInput: "hello"})
			done <- struct{}{}
		}()
	}
	<-done
	<-done
}

func TestProcessUpdatesEntityTracker(t *testing.T) {
	org := newTestOrganism(t)
	org.Process(context.Background(), Request{UserID: "user-1", UserInput: "thinking about dad again", Mentioned: []string{"dad"}})

	a, ok := org.entities.Lookup("user-1", "dad")
	require.True(t, ok)
	assert.Equal(t, 1, a.MentionCount)
}

func TestSaveAllWritesAllFiles(t *testing.T) {
	org := newTestOrganism(t)
	org.Process(context.Background(), Request{UserID: "user-1", UserInput: "hello there"})

	dir := t.TempDir()
	require.NoError(t, org.SaveAll(dir))
	for _, name := range []string{"hebbian_r_matrix.json", "organic_families.json", "entity_organ_associations.json", "epoch_trackers.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "missing %s", name)
	}
}

func TestDiagnosticsReportsRegime(t *testing.T) {
	org := newTestOrganism(t)
	out := org.Diagnostics()
	assert.Contains(t, out, "regime=EXPLORING")
}

func TestProcessFeedsRecentInputRingAcrossTurns(t *testing.T) {
	org := newTestOrganism(t)
	req := Request{UserID: "user-1", UserInput: "I keep saying the same thing over and over."}

	org.Process(context.Background(), req)
	org.Process(context.Background(), req)

	ring := org.recentRing("user-1")
	require.Len(t, ring, 2)
	assert.Equal(t, req.UserInput, ring[0])
	assert.Equal(t, req.UserInput, ring[1])
}

func TestRecentRingTrimsToConfiguredSize(t *testing.T) {
	org := newTestOrganism(t)
	org.cfg.RecentInputsRingSize = 2

	org.Process(context.Background(), Request{UserID: "user-1", UserInput: "first"})
	org.Process(context.Background(), Request{UserID: "user-1", UserInput: "second"})
	org.Process(context.Background(), Request{UserID: "user-1", UserInput: "third"})

	ring := org.recentRing("user-1")
	require.Len(t, ring, 2)
	assert.Equal(t, []string{"second", "third"}, ring)
}
