package family

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/axo-lotto/dae-hyphae/internal/vecmath"
)

// Family is one emergent cluster of similar transformation signatures
// (spec.md §4.11): an EMA centroid and a member count. The similarity
// floor it admits new members at is derived from the member count by
// Learner.floorFor, not stored.
type Family struct {
	ID          string    `json:"id"`
	Centroid    []float64 `json:"centroid"`
	MemberCount int       `json:"member_count"`
}

// Learner clusters incoming signatures into families under a single
// process-wide writer lock, mirroring the Hebbian matrix's read-mostly,
// single-writer discipline.
type Learner struct {
	mu       sync.RWMutex
	families []*Family
	nextID   int

	emaAlpha       float64
	simInitial     float64
	simMid         float64
	simMature      float64
	minFamilySize  int
	newFamilyID    func() string
}

// New constructs an empty Learner. newFamilyID lets callers supply the
// shared ID generator (internal/ids) without this package importing it
// directly, keeping family decoupled from ID-format decisions.
func New(emaAlpha, simInitial, simMid, simMature float64, minFamilySize int, newFamilyID func() string) *Learner {
	return &Learner{
		emaAlpha:      emaAlpha,
		simInitial:    simInitial,
		simMid:        simMid,
		simMature:     simMature,
		minFamilySize: minFamilySize,
		newFamilyID:   newFamilyID,
	}
}

// Assign finds the most similar existing family for sig (combining cosine
// similarity and normalized inverse Euclidean distance, spec.md §4.11),
// admits sig if it clears that family's adaptive similarity floor, and
// otherwise starts a new singleton family. Returns the family's ID and
// whether the family is mature (member_count >= min_family_size). sig is
// expected to already be L2-normalized (BuildSignature does this); every
// centroid this method stores or updates is renormalized regardless, so
// centroids stay unit vectors even if a caller passes a raw signature.
func (l *Learner) Assign(sig []float64) (familyID string, mature bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	best, bestScore := -1, -1.0
	for i, f := range l.families {
		score := similarity(sig, f.Centroid)
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best >= 0 && bestScore >= l.floorFor(l.families[best]) {
		f := l.families[best]
		f.Centroid = ema(f.Centroid, sig, l.emaAlpha)
		vecmath.L2Normalize(f.Centroid)
		f.MemberCount++
		return f.ID, f.MemberCount >= l.minFamilySize
	}

	id := l.newFamilyID()
	centroid := append([]float64(nil), sig...)
	vecmath.L2Normalize(centroid)
	f := &Family{ID: id, Centroid: centroid, MemberCount: 1}
	l.families = append(l.families, f)
	return f.ID, false
}

// floorFor returns the similarity floor a family currently admits new
// members at: a looser floor while small (encouraging emergence), a
// progressively tighter floor as it matures (spec.md §4.11 adaptive
// thresholds 0.55/0.65/0.75).
func (l *Learner) floorFor(f *Family) float64 {
	switch {
	case f.MemberCount < l.minFamilySize:
		return l.simInitial
	case f.MemberCount < l.minFamilySize*3:
		return l.simMid
	default:
		return l.simMature
	}
}

// similarity blends cosine similarity and normalized inverse Euclidean
// distance into a single [0,1]-ish score (spec.md §4.11: "cosine +
// Euclidean similarity").
func similarity(a, b []float64) float64 {
	cos := vecmath.CosineSimilarity(a, b)
	dist := vecmath.EuclideanDistance(a, b)
	euclidSim := 1.0 / (1.0 + dist)
	return 0.5*cos + 0.5*euclidSim
}

// ema applies an exponential moving average update to a centroid.
func ema(centroid, sig []float64, alpha float64) []float64 {
	out := make([]float64, len(centroid))
	for i := range centroid {
		var v float64
		if i < len(sig) {
			v = sig[i]
		}
		out[i] = (1-alpha)*centroid[i] + alpha*v
	}
	return out
}

// Snapshot returns a point-in-time copy of all families, sorted by
// descending member count, for diagnostics and persistence.
func (l *Learner) Snapshot() []Family {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Family, len(l.families))
	for i, f := range l.families {
		out[i] = Family{ID: f.ID, Centroid: append([]float64(nil), f.Centroid...), MemberCount: f.MemberCount}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].MemberCount > out[i].MemberCount {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// MatureFamilies returns only the families that have crossed min_family_size,
// the emergent "named pattern" set spec.md §4.11 expects to show a
// power-law member-count distribution.
func (l *Learner) MatureFamilies() []Family {
	all := l.Snapshot()
	var out []Family
	for _, f := range all {
		if f.MemberCount >= l.minFamilySize {
			out = append(out, f)
		}
	}
	return out
}

type persisted struct {
	Families []Family `json:"families"`
}

// Save persists all families as a single human-readable JSON document
// (organic_families.json per the process-wide persisted-state layout).
// Callers must hold exclusive access for the duration of the call — the
// single-writer JSON-file discipline applies across the whole store, not
// just this in-memory structure.
func (l *Learner) Save(path string) error {
	snap := l.Snapshot()
	data, err := json.MarshalIndent(persisted{Families: snap}, "", "  ")
	if err != nil {
		return fmt.Errorf("family: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("family: write: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load restores families from a prior Save. A missing file is not an
// error: it means no families have formed yet.
func Load(path string, emaAlpha, simInitial, simMid, simMature float64, minFamilySize int, newFamilyID func() string) (*Learner, error) {
	l := New(emaAlpha, simInitial, simMid, simMature, minFamilySize, newFamilyID)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("family: read: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("family: unmarshal: %w", err)
	}
	for _, f := range p.Families {
		fc := f
		l.families = append(l.families, &fc)
	}
	return l, nil
}
