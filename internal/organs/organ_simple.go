package organs

import "github.com/axo-lotto/dae-hyphae/internal/atoms"

// simpleOrgan implements the eight organs whose result carries no
// organ-specific detail beyond the shared Result shape (CARD adds only its
// recommended scale): LISTENING, EMPATHY, WISDOM, AUTHENTICITY, PRESENCE,
// SANS, CARD and NEXUS share this implementation, differing only by which
// atom catalog they draw from.
type simpleOrgan struct {
	name    atoms.Organ
	catalog *atoms.Catalog
}

func (s simpleOrgan) Name() atoms.Organ { return s.name }

func (s simpleOrgan) Process(c Context) Result {
	res := baseResult(s.name, s.catalog, c)
	if s.name == atoms.Card {
		res.CARD = &CARDDetail{RecommendedScale: recommendScale(res.AtomActivations)}
	}
	return res
}

// NewListening constructs the LISTENING organ.
func NewListening(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.Listening, cat} }

// NewEmpathy constructs the EMPATHY organ.
func NewEmpathy(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.Empathy, cat} }

// NewWisdom constructs the WISDOM organ.
func NewWisdom(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.Wisdom, cat} }

// NewAuthenticity constructs the AUTHENTICITY organ.
func NewAuthenticity(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.Authenticity, cat} }

// NewPresence constructs the PRESENCE organ.
func NewPresence(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.Presence, cat} }

// NewSans constructs the SANS organ (narrative/sense-making coherence).
func NewSans(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.Sans, cat} }

// NewCard constructs the CARD organ (scale/dosing recommender).
func NewCard(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.Card, cat} }

// NewNexusOrgan constructs the NEXUS organ. It may legitimately stay
// dormant on turns with no cross-organ convergence signal (spec.md §4.2,
// §9 Open Questions); this deployment treats its inclusion in the 12-organ
// signature as mandatory rather than optional, so it is always processed
// like the others.
func NewNexusOrgan(cat *atoms.Catalog) Organ { return simpleOrgan{atoms.NexusOrgan, cat} }

// recommendScale turns CARD's raw scale_* activations into a single
// recommended intervention scale (spec.md §3: CARD exposes
// recommended_scale).
func recommendScale(activations map[string]float64) string {
	best, bestV := "scale_session", -1.0
	for _, n := range []string{"scale_micro", "scale_session", "scale_relationship", "scale_systemic"} {
		if v := activations[n]; v > bestV {
			best, bestV = n, v
		}
	}
	return best
}

// SANSCoherenceRepairNeeded returns how strongly SANS detected a narrative
// gap needing repair, consumed by the Fragmented nexus-type discriminator
// (spec.md §4.7).
func SANSCoherenceRepairNeeded(res Result) float64 {
	return res.AtomActivations["sense_repair"] + res.AtomActivations["story_gap"]
}
