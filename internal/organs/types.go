// Package organs implements the Organ Prehension layer (C2): the twelve
// named roles of spec.md §3, each mapping user input + entity prehension
// into a coherence score, lure field and atom activations.
package organs

import (
	"context"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
)

// DominantPart is BOND's IFS-part classification.
type DominantPart string

const (
	PartManager    DominantPart = "manager"
	PartFirefighter DominantPart = "firefighter"
	PartExile      DominantPart = "exile"
	PartSelf       DominantPart = "SELF"
)

// PolyvagalState is EO's autonomic-state classification.
type PolyvagalState string

const (
	Ventral     PolyvagalState = "ventral"
	Sympathetic PolyvagalState = "sympathetic"
	Dorsal      PolyvagalState = "dorsal"
	Mixed       PolyvagalState = "mixed"
)

// TemporalState is RNX's time-perception classification.
type TemporalState string

const (
	TemporalNormal    TemporalState = "normal"
	TemporalSuspended TemporalState = "suspended"
	TemporalLooped    TemporalState = "looped"
	TemporalRepeating TemporalState = "repeating"
)

// EntityPrehension is the pre-emission entity context assembled before C2
// runs (spec.md §6 context.entity_prehension / §4.12 predictor output).
type EntityPrehension struct {
	Entities       []string
	OrganBoost     map[atoms.Organ]float64 // predicted boost per organ from tracked entities
	TypicalZone    string
	TypicalUrgency float64
}

// TemporalContext carries the recognized temporal fields from spec.md §6.
type TemporalContext struct {
	TimeOfDay   string // morning, afternoon, evening, night
	DayOfWeek   string
	IsWeekend   bool
	IsWorkHours bool
}

// Context is the shared, read-only context passed into every organ on every
// cycle. Organs within a cycle never observe each other's state directly —
// only this shared context and the previous cycle's fields (PriorCoherence).
type Context struct {
	Ctx            context.Context
	UserInput      string
	Entity         EntityPrehension
	Temporal       TemporalContext
	CycleIndex     int
	PriorCoherence map[atoms.Organ]float64 // previous cycle's coherence, for organs that look backward (no current organ reads it; RNX uses RecentInputs)
	RecentInputs   []string                 // bounded recent user turns, for RNX looped/repeating detection
}

// Result is the shared shape every organ returns (spec.md §4.2). Organ-
// specific fields live in the pointer fields below, nil when not
// applicable.
type Result struct {
	Organ             atoms.Organ
	Coherence         float64
	Lure              float64
	LureField         map[string]float64 // atom name -> [0,1], sums to 1
	AtomActivations   map[string]float64 // atom name -> unnormalized signal

	// Organ-specific extensions (populated only by BOND/EO/NDAM/RNX/CARD).
	Bond *BondDetail
	EO   *EODetail
	NDAM *NDAMDetail
	RNX  *RNXDetail
	CARD *CARDDetail
}

// BondDetail carries BOND's IFS-flavored state.
type BondDetail struct {
	SelfDistance  float64
	DominantPart  DominantPart
}

// EODetail carries EO's polyvagal state.
type EODetail struct {
	PolyvagalState PolyvagalState
}

// NDAMDetail carries NDAM's urgency appraisal.
type NDAMDetail struct {
	UrgencyLevel float64
}

// RNXDetail carries RNX's temporal-perception state.
type RNXDetail struct {
	TemporalState TemporalState
}

// CARDDetail carries CARD's dosing/scale recommendation.
type CARDDetail struct {
	RecommendedScale string
}

// Organ is the common interface implemented by all twelve roles.
type Organ interface {
	Name() atoms.Organ
	Process(c Context) Result
}

// Neutral returns the zero-coherence, uniform-lure result an organ reports
// on failure or legitimate non-participation (spec.md §4.2).
func Neutral(name atoms.Organ, atomNames []string) Result {
	field := make(map[string]float64, len(atomNames))
	if len(atomNames) > 0 {
		u := 1.0 / float64(len(atomNames))
		for _, n := range atomNames {
			field[n] = u
		}
	}
	return Result{
		Organ:           name,
		Coherence:       0,
		Lure:            0,
		LureField:       field,
		AtomActivations: map[string]float64{},
	}
}
