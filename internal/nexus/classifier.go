package nexus

import (
	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

// Classify implements C7: a deterministic, two-level decision tree over
// organ insights. No learning, no hidden state — re-classifying the same
// organ results for the same nexus always yields the same type (spec.md §8
// property 8).
func Classify(n *Nexus, organResults map[atoms.Organ]organs.Result) {
	ndam := organResults[atoms.Ndam].NDAM
	eo := organResults[atoms.Eo].EO
	bond := organResults[atoms.Bond].Bond
	rnx := organResults[atoms.Rnx].RNX
	sans := organResults[atoms.Sans]

	urgency := 0.0
	if ndam != nil {
		urgency = ndam.UrgencyLevel
	}
	polyvagal := organs.Ventral
	if eo != nil {
		polyvagal = eo.PolyvagalState
	}
	part := organs.PartSelf
	selfDistance := 0.0
	if bond != nil {
		part = bond.DominantPart
		selfDistance = bond.SelfDistance
	}
	temporal := organs.TemporalNormal
	if rnx != nil {
		temporal = rnx.TemporalState
	}

	crisis := urgency >= 0.7 ||
		(polyvagal == organs.Dorsal && part == organs.PartExile) ||
		(part == organs.PartExile && urgency >= 0.5)

	participates := func(target atoms.Organ) bool {
		for _, p := range n.Participants {
			if p == target {
				return true
			}
		}
		return false
	}

	if crisis {
		n.NexusCategory = CrisisOriented
		switch {
		case polyvagal == organs.Dorsal:
			n.NexusType = TypeDissociative
		case urgency >= 0.85:
			n.NexusType = TypeUrgency
		case temporal == organs.TemporalSuspended:
			n.NexusType = TypeRecursive
		case temporal == organs.TemporalLooped || temporal == organs.TemporalRepeating:
			n.NexusType = TypeLooped
		case part == organs.PartFirefighter && urgency > 0.6:
			n.NexusType = TypeDisruptive
		case urgency > 0.7 && selfDistance > 0.3 && selfDistance < 0.5:
			n.NexusType = TypeParadox
		default:
			n.NexusType = TypeUrgency
		}
		n.ClassificationConfidence = urgency
		return
	}

	n.NexusCategory = Constitutional
	repairNeeded := organs.SANSCoherenceRepairNeeded(sans)
	switch {
	case selfDistance < 0.15 && !participates(atoms.Wisdom) && !participates(atoms.Authenticity):
		n.NexusType = TypePreExisting
	case selfDistance < 0.15:
		n.NexusType = TypeInnate
	case selfDistance < 0.25:
		n.NexusType = TypeRelational
	case selfDistance < 0.35:
		n.NexusType = TypeContrast
	case selfDistance < 0.60 && part == organs.PartFirefighter:
		n.NexusType = TypeProtective
	case selfDistance < 0.60 && repairNeeded > 0.7:
		n.NexusType = TypeFragmented
	case selfDistance < 0.60 && !participates(atoms.Sans):
		n.NexusType = TypeIsolated
	case selfDistance < 0.60:
		// Zone 4 with SANS present, no firefighter part and no narrative
		// repair need: spec.md names Protective/Fragmented/Isolated for
		// this zone but leaves this combination undecided; Protective is
		// the closest safe default (its stance is "validate").
		n.NexusType = TypeProtective
	default:
		n.NexusType = TypeAbsorbed
	}
	n.ClassificationConfidence = 1 - selfDistance
}

// ClassifyAll classifies every candidate in place.
func ClassifyAll(candidates []Nexus, organResults map[atoms.Organ]organs.Result) {
	for i := range candidates {
		Classify(&candidates[i], organResults)
	}
}
