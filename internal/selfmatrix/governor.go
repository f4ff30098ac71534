// Package selfmatrix implements the SELF-Matrix Governor (C8): mapping
// BOND's self_distance to a zone and therapeutic stance, and computing
// each nexus's self_distance_influence for the next turn's initial felt
// state (spec.md §4.8).
package selfmatrix

import (
	"github.com/axo-lotto/dae-hyphae/internal/nexus"
)

// Zone is one of the five fixed SELF-distance buckets.
type Zone string

const (
	Z1CoreSelf          Zone = "Z1_core_self"
	Z2InnerRelational    Zone = "Z2_inner_relational"
	Z3SymbolicThreshold  Zone = "Z3_symbolic_threshold"
	Z4ShadowCompost      Zone = "Z4_shadow_compost"
	Z5ExileCollapse      Zone = "Z5_exile_collapse"
)

// ZoneOf is a pure, monotone step function of self_distance (spec.md §3/§8
// property 5).
func ZoneOf(selfDistance float64) Zone {
	switch {
	case selfDistance <= 0.15:
		return Z1CoreSelf
	case selfDistance <= 0.25:
		return Z2InnerRelational
	case selfDistance <= 0.35:
		return Z3SymbolicThreshold
	case selfDistance <= 0.60:
		return Z4ShadowCompost
	default:
		return Z5ExileCollapse
	}
}

// stanceTable maps (category, type) to the therapeutic stance. Spec.md
// fixes the intrusiveness ordering (witness < attune < hold < validate <
// ground < minimal) but not a full table; this assignment follows that
// ordering by zone depth and crisis severity.
var stanceTable = map[nexus.Type]nexus.Stance{
	nexus.TypePreExisting: nexus.StanceWitness,
	nexus.TypeInnate:      nexus.StanceWitness,
	nexus.TypeRelational:  nexus.StanceAttune,
	nexus.TypeContrast:    nexus.StanceHold,
	nexus.TypeProtective:  nexus.StanceValidate,
	nexus.TypeFragmented:  nexus.StanceValidate,
	nexus.TypeIsolated:    nexus.StanceValidate,
	nexus.TypeAbsorbed:    nexus.StanceGround,

	nexus.TypeParadox:      nexus.StanceHold,
	nexus.TypeLooped:       nexus.StanceValidate,
	nexus.TypeRecursive:    nexus.StanceGround,
	nexus.TypeDisruptive:   nexus.StanceGround,
	nexus.TypeDissociative: nexus.StanceMinimal,
	nexus.TypeUrgency:      nexus.StanceMinimal,
}

// Govern fills Zone-derived fields on n: TherapeuticStance, SafetyLevel,
// SelfDistanceInfluence, ModulationDirection. satisfaction is the current
// occasion's satisfaction (S in spec.md §4.8's influence formulas).
func Govern(n *nexus.Nexus, selfDistance, satisfaction float64) Zone {
	zone := ZoneOf(selfDistance)

	stance, ok := stanceTable[n.NexusType]
	if !ok {
		stance = nexus.StanceHold
	}
	n.TherapeuticStance = stance

	n.SafetyLevel = safetyLevel(zone, n.NexusCategory, n.NexusType)
	n.SelfDistanceInfluence = influenceOf(n.NexusCategory, n.NexusType, satisfaction)
	if n.SelfDistanceInfluence > 0 {
		n.ModulationDirection = "away_from_self"
	} else if n.SelfDistanceInfluence < 0 {
		n.ModulationDirection = "toward_self"
	} else {
		n.ModulationDirection = "neutral"
	}
	return zone
}

func safetyLevel(zone Zone, category nexus.Category, t nexus.Type) nexus.SafetyLevel {
	if zone == Z5ExileCollapse || t == nexus.TypeDissociative || t == nexus.TypeUrgency {
		return nexus.SafetyBreach
	}
	if (zone == Z1CoreSelf || zone == Z2InnerRelational) && category == nexus.Constitutional {
		return nexus.SafetySafe
	}
	if zone == Z3SymbolicThreshold || zone == Z4ShadowCompost || category == nexus.CrisisOriented {
		return nexus.SafetyEdge
	}
	return nexus.SafetyEdge
}

// healthyConstitutional are the constitutional types treated as a healthy
// connection to SELF (spec.md §4.8: "Constitutional healthy -> -0.05*S").
var healthyConstitutional = map[nexus.Type]bool{
	nexus.TypePreExisting: true,
	nexus.TypeInnate:      true,
	nexus.TypeRelational:  true,
}

// stuckCrisis are crisis types treated as "stuck" rather than acutely
// severe (spec.md §4.8: "Crisis stuck -> 0").
var stuckCrisis = map[nexus.Type]bool{
	nexus.TypeLooped:    true,
	nexus.TypeRecursive: true,
}

func influenceOf(category nexus.Category, t nexus.Type, satisfaction float64) float64 {
	switch {
	case category == nexus.Constitutional && healthyConstitutional[t]:
		return -0.05 * satisfaction
	case category == nexus.Constitutional:
		return 0.02 * (1 - satisfaction)
	case category == nexus.CrisisOriented && stuckCrisis[t]:
		return 0
	case category == nexus.CrisisOriented:
		return 0.10 * (1 - satisfaction)
	default:
		return 0
	}
}
