package nexus

import (
	"sort"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/field"
	"github.com/axo-lotto/dae-hyphae/internal/hebbian"
	"github.com/axo-lotto/dae-hyphae/internal/ids"
	"github.com/axo-lotto/dae-hyphae/internal/vecmath"
)

// Compose implements C6: collect every atom appearing in >=1 field, keep
// atoms where >=2 organs activate above threshold, and score each
// resulting nexus. Returns all candidates sorted descending by intersection
// strength; callers trim to top-K after classification (see SelectTop),
// since the safety tie-break in §4.6 needs the classified stance.
func Compose(fields map[atoms.Organ]*field.SemanticField, rMatrix *hebbian.Matrix, threshold, coherenceGate float64, nexusBar float64) []Nexus {
	atomOrgans := make(map[string][]atoms.Organ)
	for organ, f := range fields {
		for atomName, activation := range f.Activations {
			if activation >= threshold {
				atomOrgans[atomName] = append(atomOrgans[atomName], organ)
			}
		}
	}

	var out []Nexus
	for atomName, organList := range atomOrgans {
		if len(organList) < 2 {
			continue
		}
		sort.Slice(organList, func(i, j int) bool { return organList[i] < organList[j] })

		activations := make(map[atoms.Organ]float64, len(organList))
		vals := make([]float64, 0, len(organList))
		for _, o := range organList {
			a := fields[o].Activations[atomName]
			activations[o] = a
			vals = append(vals, a)
		}

		var strengthSum, rWeightSum float64
		pairCount := 0
		for i := 0; i < len(organList); i++ {
			for j := i + 1; j < len(organList); j++ {
				oi, oj := organList[i], organList[j]
				r := rMatrix.Get(oi, oj)
				strengthSum += activations[oi] * activations[oj] * r
				rWeightSum += r
				pairCount++
			}
		}
		rMatrixWeight := 0.0
		if pairCount > 0 {
			rMatrixWeight = rWeightSum / float64(pairCount)
		}

		agreement := 1 - vecmath.StdDev(vals)
		fieldStrength := vecmath.Mean(vals)
		emissionReadiness := 0.4*strengthSum + 0.3*agreement + 0.2*fieldStrength + 0.1*coherenceGate

		out = append(out, Nexus{
			ID:                   ids.New(),
			Atom:                 atomName,
			Participants:         organList,
			Activations:          activations,
			IntersectionStrength: strengthSum,
			Agreement:            agreement,
			FieldStrength:        fieldStrength,
			RMatrixWeight:        rMatrixWeight,
			EmissionReadiness:    emissionReadiness,
			CoActivation:         strengthSum < nexusBar,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].IntersectionStrength > out[j].IntersectionStrength
	})
	return out
}

// SelectTop trims candidates to the top k by emission_readiness, breaking
// near-ties (within epsilon) in favor of the less intrusive therapeutic
// stance (spec.md §4.6). Candidates must already be classified (Type,
// TherapeuticStance populated) by the time this runs.
func SelectTop(candidates []Nexus, k int, epsilon float64) []Nexus {
	sorted := make([]Nexus, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		di := sorted[i].EmissionReadiness
		dj := sorted[j].EmissionReadiness
		if absf(di-dj) <= epsilon {
			return Intrusiveness(sorted[i].TherapeuticStance) < Intrusiveness(sorted[j].TherapeuticStance)
		}
		return di > dj
	})
	if k >= 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
