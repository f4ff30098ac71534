// Package family implements the Organic Family Learner (C11): clustering
// turn-to-turn transformation signatures into emergent, power-law-distributed
// families via cosine+Euclidean similarity and EMA centroid updates
// (spec.md §4.11).
package family

import (
	"fmt"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/concrescence"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
	"github.com/axo-lotto/dae-hyphae/internal/selfmatrix"
	"github.com/axo-lotto/dae-hyphae/internal/vecmath"
)

// SignatureDim is the fixed width of a transformation signature: 6 V0
// descent + 11 organ-coherence shifts + 11 organ-lure shifts + 3 polyvagal
// + 3 zone + 6 satisfaction evolution + 4 convergence characteristics + 2
// urgency shift + 3 emission-path one-hot + 8 field-agreement (opening
// cycle) + 8 field-agreement (final cycle) = 65.
const SignatureDim = 65

// EmissionPath names the three scored emission strategies for the one-hot
// block; the minimal-holding path is the empty value.
type EmissionPath string

const (
	PathDirect  EmissionPath = "direct"
	PathFusion  EmissionPath = "fusion"
	PathLearned EmissionPath = "learned"
)

// BuildSignature derives the 65-D transformation signature for one turn
// from its concrescence outcome plus the before/after SELF state (spec.md
// §4.11). The before/after arguments are the SELF zone, polyvagal state and
// urgency at turn start and at the final occasion; path is the chosen
// emission strategy for the one-hot
// block ("" for minimal, which leaves that block all-zero).
func BuildSignature(outcome concrescence.Outcome, beforeZone, afterZone selfmatrix.Zone, beforePolyvagal, afterPolyvagal organs.PolyvagalState, beforeUrgency, afterUrgency float64, path EmissionPath) []float64 {
	sig := make([]float64, 0, SignatureDim)

	sig = append(sig, v0Descent(outcome)...)                              // 0-5
	sig = append(sig, organCoherenceShifts(outcome)...)                   // 6-16
	sig = append(sig, organLureShifts(outcome)...)                        // 17-27
	sig = append(sig, polyvagalBlock(beforePolyvagal, afterPolyvagal)...) // 28-30
	sig = append(sig, zoneBlock(beforeZone, afterZone)...)                // 31-33
	sig = append(sig, satisfactionEvolution(outcome)...)                  // 34-39
	sig = append(sig, convergenceCharacteristics(outcome)...)             // 40-43
	sig = append(sig, urgencyShift(beforeUrgency, afterUrgency)...)       // 44-45
	sig = append(sig, pathOneHot(path)...)                                // 46-48
	sig = append(sig, fieldAgreementBlock(openingOrganResults(outcome))...) // 49-56
	sig = append(sig, fieldAgreementBlock(outcome.FinalOrganResults)...)    // 57-64

	if len(sig) != SignatureDim {
		panic(fmt.Sprintf("family: signature width %d != %d", len(sig), SignatureDim))
	}
	vecmath.L2Normalize(sig)
	return sig
}

func openingOrganResults(outcome concrescence.Outcome) map[atoms.Organ]organs.Result {
	if len(outcome.Occasions) == 0 {
		return nil
	}
	return outcome.Occasions[0].OrganResults
}

// v0Descent is a fixed 6-wide block: the first five cycles' V0 values
// (zero-padded if fewer cycles ran) plus the total descent (first minus
// last).
func v0Descent(outcome concrescence.Outcome) []float64 {
	out := make([]float64, 6)
	for i := 0; i < 5 && i < len(outcome.Occasions); i++ {
		out[i] = outcome.Occasions[i].V0
	}
	if len(outcome.Occasions) > 0 {
		first := outcome.Occasions[0].V0
		last := outcome.Occasions[len(outcome.Occasions)-1].V0
		out[5] = first - last
	}
	return out
}

// organCoherenceShifts is an 11-wide block: for each organ except NEXUS
// (which never reports a standalone coherence shift of its own), the
// coherence delta between the first and final occasion.
func organCoherenceShifts(outcome concrescence.Outcome) []float64 {
	out := make([]float64, 0, 11)
	if len(outcome.Occasions) == 0 {
		return make([]float64, 11)
	}
	first := outcome.Occasions[0].OrganResults
	last := outcome.FinalOrganResults
	for _, o := range atoms.All {
		if o == atoms.NexusOrgan {
			continue
		}
		out = append(out, last[o].Coherence-first[o].Coherence)
	}
	return out
}

// organLureShifts is an 11-wide block parallel to organCoherenceShifts:
// the lure delta between the first and final occasion, per organ except
// NEXUS.
func organLureShifts(outcome concrescence.Outcome) []float64 {
	out := make([]float64, 0, 11)
	if len(outcome.Occasions) == 0 {
		return make([]float64, 11)
	}
	first := outcome.Occasions[0].OrganResults
	last := outcome.FinalOrganResults
	for _, o := range atoms.All {
		if o == atoms.NexusOrgan {
			continue
		}
		out = append(out, last[o].Lure-first[o].Lure)
	}
	return out
}

// polyvagalBlock is a 3-wide block: before-state index, after-state index,
// and a transition flag (1 if the state changed).
func polyvagalBlock(before, after organs.PolyvagalState) []float64 {
	b, a := polyvagalIndex(before), polyvagalIndex(after)
	transition := 0.0
	if before != after {
		transition = 1.0
	}
	return []float64{b, a, transition}
}

func polyvagalIndex(p organs.PolyvagalState) float64 {
	switch p {
	case organs.Ventral:
		return 0.0
	case organs.Sympathetic:
		return 1.0 / 3.0
	case organs.Dorsal:
		return 2.0 / 3.0
	case organs.Mixed:
		return 1.0
	default:
		return 0.5
	}
}

// zoneBlock is a 3-wide block: before-zone depth, after-zone depth, and
// signed movement (positive = moved toward exile).
func zoneBlock(before, after selfmatrix.Zone) []float64 {
	b, a := zoneDepth(before), zoneDepth(after)
	return []float64{b, a, a - b}
}

func zoneDepth(z selfmatrix.Zone) float64 {
	switch z {
	case selfmatrix.Z1CoreSelf:
		return 0.0
	case selfmatrix.Z2InnerRelational:
		return 0.25
	case selfmatrix.Z3SymbolicThreshold:
		return 0.50
	case selfmatrix.Z4ShadowCompost:
		return 0.75
	case selfmatrix.Z5ExileCollapse:
		return 1.0
	default:
		return 0.5
	}
}

// satisfactionEvolution is a 6-wide block: the first five cycles'
// satisfaction values (zero-padded) plus the net change.
func satisfactionEvolution(outcome concrescence.Outcome) []float64 {
	out := make([]float64, 6)
	for i := 0; i < 5 && i < len(outcome.Occasions); i++ {
		out[i] = outcome.Occasions[i].Satisfaction
	}
	if len(outcome.Occasions) > 0 {
		first := outcome.Occasions[0].Satisfaction
		last := outcome.Occasions[len(outcome.Occasions)-1].Satisfaction
		out[5] = last - first
	}
	return out
}

// convergenceCharacteristics is a 4-wide block: cycle count (normalized by
// max 5), and one-hot-ish indicators for each convergence reason collapsed
// into three flags (kairos, energy_stable, crystallization) — max_cycles
// is implied when all three are zero.
func convergenceCharacteristics(outcome concrescence.Outcome) []float64 {
	cycles := float64(len(outcome.Occasions)) / 5.0
	kairos, stable, crystal := 0.0, 0.0, 0.0
	switch outcome.ConvergenceReason {
	case "kairos":
		kairos = 1.0
	case "energy_stable":
		stable = 1.0
	case "crystallization":
		crystal = 1.0
	}
	return []float64{cycles, kairos, stable, crystal}
}

// urgencyShift is a 2-wide block: after-before delta and absolute value.
func urgencyShift(before, after float64) []float64 {
	delta := after - before
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	return []float64{delta, abs}
}

func pathOneHot(path EmissionPath) []float64 {
	out := make([]float64, 3)
	switch path {
	case PathDirect:
		out[0] = 1
	case PathFusion:
		out[1] = 1
	case PathLearned:
		out[2] = 1
	}
	return out
}

// fieldAgreementBlock is an 8-wide block summarizing one cycle's
// cross-organ field agreement: mean and std-dev of coherence, mean and
// std-dev of lure, max coherence, max lure, and the fraction of organs
// above the default activation threshold (two readings: raw 0.30 cut,
// and a stricter 0.50 cut). Called once against the opening cycle and
// once against the final cycle, giving downstream clustering both a
// starting and an ending view of how many organs engaged.
func fieldAgreementBlock(results map[atoms.Organ]organs.Result) []float64 {
	if len(results) == 0 {
		return make([]float64, 8)
	}
	var coherences, lures []float64
	for _, o := range atoms.All {
		r := results[o]
		coherences = append(coherences, r.Coherence)
		lures = append(lures, r.Lure)
	}
	meanC, sdC := meanStd(coherences)
	meanL, sdL := meanStd(lures)
	maxC, maxL := maxOf(coherences), maxOf(lures)
	aboveLow, aboveHigh := fractionAbove(coherences, 0.30), fractionAbove(coherences, 0.50)
	return []float64{meanC, sdC, meanL, sdL, maxC, maxL, aboveLow, aboveHigh}
}

func meanStd(xs []float64) (float64, float64) {
	return vecmath.Mean(xs), vecmath.StdDev(xs)
}

func maxOf(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

func fractionAbove(xs []float64, cut float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for _, x := range xs {
		if x >= cut {
			n++
		}
	}
	return float64(n) / float64(len(xs))
}
