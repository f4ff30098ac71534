// Package entitytracker implements the Entity-Organ Association Tracker
// (C12): per-(user, entity) EMA organ boosts, typical polyvagal/zone/
// urgency/V0 readings, co-mention counts and emission success rate
// (spec.md §4.12). State is process-wide and single-writer, following the
// same discipline as internal/hebbian and internal/family.
package entitytracker

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
)

// Association is the learned profile of one entity as mentioned by one
// user.
type Association struct {
	Entity          string                 `json:"entity"`
	OrganBoost      map[atoms.Organ]float64 `json:"organ_boost"`
	TypicalZone     string                 `json:"typical_zone"`
	TypicalPolyvagal string                `json:"typical_polyvagal"`
	TypicalUrgency  float64                `json:"typical_urgency"`
	TypicalV0       float64                `json:"typical_v0"`
	MentionCount    int                    `json:"mention_count"`
	SuccessCount    int                    `json:"success_count"`
	CoMentions      map[string]int         `json:"co_mentions"`
}

// SuccessRate returns the fraction of mentions that led to a satisfying
// turn (satisfaction above the caller's own threshold, recorded at
// Observe time), or 0 if the entity has never been mentioned.
func (a Association) SuccessRate() float64 {
	if a.MentionCount == 0 {
		return 0
	}
	return float64(a.SuccessCount) / float64(a.MentionCount)
}

// Tracker holds every user's entity associations.
type Tracker struct {
	mu    sync.RWMutex
	alpha float64
	users map[string]map[string]*Association // user_id -> entity -> association
}

// New returns an empty Tracker with the given EMA smoothing factor
// (spec.md §4.12 fixes entity_ema_alpha=0.15).
func New(alpha float64) *Tracker {
	return &Tracker{alpha: alpha, users: make(map[string]map[string]*Association)}
}

// Observation is one turn's worth of entity-relevant outcome, folded into
// every entity mentioned in that turn.
type Observation struct {
	OrganCoherence map[atoms.Organ]float64
	Zone           string
	Polyvagal      string
	Urgency        float64
	V0             float64
	Satisfied      bool
}

// Observe folds obs into every entity in mentioned, updating co-mention
// counts between all pairs in the same call.
func (t *Tracker) Observe(userID string, mentioned []string, obs Observation) {
	if len(mentioned) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	entities, ok := t.users[userID]
	if !ok {
		entities = make(map[string]*Association)
		t.users[userID] = entities
	}

	for _, name := range mentioned {
		a, ok := entities[name]
		if !ok {
			a = &Association{Entity: name, OrganBoost: make(map[atoms.Organ]float64), CoMentions: make(map[string]int)}
			entities[name] = a
		}
		a.MentionCount++
		if obs.Satisfied {
			a.SuccessCount++
		}
		for _, o := range atoms.All {
			a.OrganBoost[o] = ema(a.OrganBoost[o], obs.OrganCoherence[o], t.alpha)
		}
		a.TypicalZone = emaCategorical(a.TypicalZone, obs.Zone, a.MentionCount)
		a.TypicalPolyvagal = emaCategorical(a.TypicalPolyvagal, obs.Polyvagal, a.MentionCount)
		a.TypicalUrgency = ema(a.TypicalUrgency, obs.Urgency, t.alpha)
		a.TypicalV0 = ema(a.TypicalV0, obs.V0, t.alpha)

		for _, other := range mentioned {
			if other != name {
				a.CoMentions[other]++
			}
		}
	}
}

// PredictBoost returns the prehension-time entity boost for userID given
// entities mentioned in the current turn: the mean organ-boost profile
// across all recognized entities, or a zero map if none are known yet.
func (t *Tracker) PredictBoost(userID string, mentioned []string) map[atoms.Organ]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[atoms.Organ]float64, len(atoms.All))
	entities, ok := t.users[userID]
	if !ok {
		return out
	}
	known := 0
	for _, name := range mentioned {
		a, ok := entities[name]
		if !ok {
			continue
		}
		known++
		for _, o := range atoms.All {
			out[o] += a.OrganBoost[o]
		}
	}
	if known == 0 {
		return out
	}
	for o := range out {
		out[o] /= float64(known)
	}
	return out
}

// Lookup returns userID's association for entity, if known.
func (t *Tracker) Lookup(userID, entity string) (Association, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entities, ok := t.users[userID]
	if !ok {
		return Association{}, false
	}
	a, ok := entities[entity]
	if !ok {
		return Association{}, false
	}
	return *a, true
}

func ema(prev, next, alpha float64) float64 {
	if prev == 0 {
		return next
	}
	return (1-alpha)*prev + alpha*next
}

// emaCategorical holds the current mode for categorical fields: with no
// true running-mode counter kept per value, the first observation after
// every few mentions is allowed to overwrite so the field tracks recent
// typical behavior rather than permanently freezing on the first reading.
func emaCategorical(prev, next string, mentionCount int) string {
	if prev == "" || mentionCount%3 == 0 {
		return next
	}
	return prev
}

type persisted struct {
	Alpha float64                             `json:"alpha"`
	Users map[string]map[string]*Association `json:"users"`
}

// Save persists the full tracker as entity_organ_associations.json.
func (t *Tracker) Save(path string) error {
	t.mu.RLock()
	data, err := json.MarshalIndent(persisted{Alpha: t.alpha, Users: t.users}, "", "  ")
	t.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("entitytracker: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("entitytracker: write: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load restores a tracker from a prior Save, or returns an empty one if
// the file does not yet exist.
func Load(path string, defaultAlpha float64) (*Tracker, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(defaultAlpha), nil
	}
	if err != nil {
		return nil, fmt.Errorf("entitytracker: read: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("entitytracker: unmarshal: %w", err)
	}
	if p.Users == nil {
		p.Users = make(map[string]map[string]*Association)
	}
	return &Tracker{alpha: p.Alpha, users: p.Users}, nil
}
