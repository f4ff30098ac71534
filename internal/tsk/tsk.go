// Package tsk implements the Turn-State-Knowledge Recorder (C14): an
// immutable, append-only record of one turn's full trajectory, written to
// tsk_records/<user_id>/<turn_id>.json. Persistence failures here are
// non-fatal — a dropped TSK record loses learning signal for that turn,
// it never blocks the response already computed (spec.md §7).
package tsk

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/nexus"
	"github.com/axo-lotto/dae-hyphae/internal/obs"
	"github.com/axo-lotto/dae-hyphae/internal/store"
)

// Record is the immutable per-turn snapshot handed to persistence after a
// turn completes.
type Record struct {
	TurnID            string             `json:"turn_id"`
	UserID            string             `json:"user_id"`
	Timestamp         time.Time          `json:"timestamp"`
	UserInput         string             `json:"user_input"`
	CyclesRun         int                `json:"cycles_run"`
	ConvergenceReason string             `json:"convergence_reason"`
	FinalV0           float64            `json:"final_v0"`
	FinalCoherence    map[atoms.Organ]float64 `json:"final_coherence"`
	TopNexuses        []nexus.Nexus      `json:"top_nexuses"`
	SelfDistanceBefore float64           `json:"self_distance_before"`
	SelfDistanceAfter float64            `json:"self_distance_after"`
	EmissionText      string             `json:"emission_text"`
	EmissionPath      string             `json:"emission_path"`
	EmissionConfidence float64           `json:"emission_confidence"`
	Regime            string             `json:"regime"`
	FamilyID          string             `json:"family_id,omitempty"`
	UserSatisfaction  *float64           `json:"user_satisfaction,omitempty"`
}

// Recorder writes records under a fixed base directory.
type Recorder struct {
	baseDir string
}

// New returns a Recorder rooted at baseDir (e.g. "./data/tsk_records").
func New(baseDir string) *Recorder {
	return &Recorder{baseDir: baseDir}
}

// Persist writes rec to <baseDir>/<user_id>/<turn_id>.json. Failures are
// logged, not returned, matching spec.md §7's treatment of persistence
// errors in the learning path as non-fatal.
func (r *Recorder) Persist(rec Record) {
	path := filepath.Join(r.baseDir, rec.UserID, rec.TurnID+".json")
	if err := store.WriteJSON(path, rec); err != nil {
		obs.L().Error("tsk: failed to persist turn record", "turn_id", rec.TurnID, "user_id", rec.UserID, "error", err)
	}
}

// Load reads back a single persisted record, mainly for diagnostics and
// tests.
func (r *Recorder) Load(userID, turnID string) (Record, bool, error) {
	var rec Record
	path := filepath.Join(r.baseDir, userID, turnID+".json")
	ok, err := store.ReadJSON(path, &rec)
	if err != nil {
		return Record{}, false, fmt.Errorf("tsk: load %s/%s: %w", userID, turnID, err)
	}
	return rec, ok, nil
}
