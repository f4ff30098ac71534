// Package field implements the Semantic Field Extractor (C3) and the
// Meta-Atom Activator (C4): turning organ prehension results into
// per-organ semantic fields, then bridging cross-organ meta-atoms into
// those fields when all bridged organs co-fire strongly enough.
package field

import (
	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

// negligibleCoherence is the cutoff below which an organ's field is
// dropped rather than extracted (spec.md §4.3: "for each organ with
// non-negligible coherence").
const negligibleCoherence = 0.01

// SemanticField is an organ's atom->activation mapping plus its
// field-level coherence/lure attributes (spec.md §3).
type SemanticField struct {
	Organ       atoms.Organ
	Coherence   float64
	Lure        float64
	LureField   map[string]float64 // organ's own lure field, preserved as metadata
	Activations map[string]float64 // atom name -> scaled activation (includes meta-atoms after C4)
}

// Extract builds the semantic fields for one cycle's organ results
// (spec.md §4.3): scaled = raw * (0.5 + 0.5*lure) * coherence.
func Extract(results map[atoms.Organ]organs.Result) map[atoms.Organ]*SemanticField {
	out := make(map[atoms.Organ]*SemanticField, len(results))
	for organ, res := range results {
		if res.Coherence < negligibleCoherence {
			continue
		}
		scale := (0.5 + 0.5*res.Lure) * res.Coherence
		activations := make(map[string]float64, len(res.AtomActivations))
		for atom, raw := range res.AtomActivations {
			activations[atom] = raw * scale
		}
		out[organ] = &SemanticField{
			Organ:       organ,
			Coherence:   res.Coherence,
			Lure:        res.Lure,
			LureField:   res.LureField,
			Activations: activations,
		}
	}
	return out
}

// ActivateMetaAtoms implements C4: for every meta-atom whose bridged
// organs all have coherence >= bridgeThreshold and each contributes at
// least minContribution to its own field, the meta-atom is added to every
// bridged organ's field at the mean of their contributions.
func ActivateMetaAtoms(fields map[atoms.Organ]*SemanticField, catalog *atoms.Catalog, bridgeThreshold, minContribution float64) {
	for _, meta := range catalog.MetaAtoms() {
		contributions := make([]float64, 0, len(meta.MetaOf))
		eligible := true
		for _, organ := range meta.MetaOf {
			f, ok := fields[organ]
			if !ok || f.Coherence < bridgeThreshold {
				eligible = false
				break
			}
			contribution := maxActivation(f.Activations)
			if contribution < minContribution {
				eligible = false
				break
			}
			contributions = append(contributions, contribution)
		}
		if !eligible {
			continue
		}
		mean := sum(contributions) / float64(len(contributions))
		for _, organ := range meta.MetaOf {
			fields[organ].Activations[meta.Name] = mean
		}
	}
}

func maxActivation(m map[string]float64) float64 {
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	return max
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}
