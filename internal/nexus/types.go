// Package nexus implements the Nexus Intersection Composer (C6) and the
// Nexus Type Classifier (C7): finding atoms where two or more organs agree,
// weighting by the Hebbian R-matrix, and classifying the result into the
// closed 14-type typology of spec.md §3/§4.7.
package nexus

import "github.com/axo-lotto/dae-hyphae/internal/atoms"

// Category is the top-level classification split (spec.md §4.7).
type Category string

const (
	Constitutional Category = "constitutional"
	CrisisOriented Category = "crisis"
)

// Type is one of the 14 closed nexus types.
type Type string

const (
	TypePreExisting Type = "Pre-Existing"
	TypeInnate      Type = "Innate"
	TypeContrast    Type = "Contrast"
	TypeRelational  Type = "Relational"
	TypeFragmented  Type = "Fragmented"
	TypeProtective  Type = "Protective"
	TypeAbsorbed    Type = "Absorbed"
	TypeIsolated    Type = "Isolated"

	TypeParadox      Type = "Paradox"
	TypeDissociative Type = "Dissociative"
	TypeDisruptive   Type = "Disruptive"
	TypeRecursive    Type = "Recursive"
	TypeLooped       Type = "Looped"
	TypeUrgency      Type = "Urgency"
)

// Stance is a therapeutic stance, ordered by intrusiveness (spec.md §4.6
// safety tie-break: witness < attune < hold < validate < ground < minimal).
type Stance string

const (
	StanceWitness  Stance = "witness"
	StanceAttune   Stance = "attune"
	StanceHold     Stance = "hold"
	StanceValidate Stance = "validate"
	StanceGround   Stance = "ground"
	StanceMinimal  Stance = "minimal"
)

// intrusiveness ranks stances from least to most intrusive; lower is
// preferred in the safety tie-break.
var intrusiveness = map[Stance]int{
	StanceWitness:  0,
	StanceAttune:   1,
	StanceHold:     2,
	StanceValidate: 3,
	StanceGround:   4,
	StanceMinimal:  5,
}

// Intrusiveness returns s's rank for the safety tie-break (lower = less
// intrusive).
func Intrusiveness(s Stance) int {
	if r, ok := intrusiveness[s]; ok {
		return r
	}
	return len(intrusiveness)
}

// SafetyLevel is the coarse safety bucket computed by the SELF-Matrix
// Governor.
type SafetyLevel string

const (
	SafetySafe   SafetyLevel = "safe"
	SafetyEdge   SafetyLevel = "edge"
	SafetyBreach SafetyLevel = "breach"
)

// Nexus is a point where >=2 organs agree on an atom (spec.md §3).
type Nexus struct {
	ID                       string
	Atom                     string
	Participants             []atoms.Organ
	Activations              map[atoms.Organ]float64
	IntersectionStrength     float64
	Agreement                float64
	FieldStrength            float64
	RMatrixWeight            float64
	EmissionReadiness        float64
	CoActivation             bool
	NexusType                Type
	NexusCategory            Category
	SelfDistanceInfluence    float64
	ModulationDirection      string
	TherapeuticStance        Stance
	SafetyLevel              SafetyLevel
	ClassificationConfidence float64
}
