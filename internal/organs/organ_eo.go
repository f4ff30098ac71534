package organs

import "github.com/axo-lotto/dae-hyphae/internal/atoms"

// eoOrgan implements EO, the polyvagal-tracking organ.
type eoOrgan struct {
	catalog *atoms.Catalog
}

// NewEO constructs the EO organ.
func NewEO(cat *atoms.Catalog) Organ { return eoOrgan{cat} }

func (e eoOrgan) Name() atoms.Organ { return atoms.Eo }

func (e eoOrgan) Process(c Context) Result {
	res := baseResult(atoms.Eo, e.catalog, c)

	a := res.AtomActivations
	ventral := a["ventral_cue"]
	sympathetic := a["sympathetic_cue"]
	dorsal := a["dorsal_cue"]

	state := classifyPolyvagal(ventral, sympathetic, dorsal)
	res.EO = &EODetail{PolyvagalState: state}
	return res
}

func classifyPolyvagal(ventral, sympathetic, dorsal float64) PolyvagalState {
	if ventral == 0 && sympathetic == 0 && dorsal == 0 {
		return Ventral
	}
	max := ventral
	state := Ventral
	if sympathetic > max {
		max, state = sympathetic, Sympathetic
	}
	if dorsal > max {
		max, state = dorsal, Dorsal
	}
	// Mixed when the top two signals are within 15% of each other.
	second := 0.0
	skippedTop := false
	for _, v := range []float64{ventral, sympathetic, dorsal} {
		if v == max && !skippedTop {
			skippedTop = true
			continue
		}
		if v > second {
			second = v
		}
	}
	if max > 0 && (max-second)/max < 0.15 && second > 0 {
		return Mixed
	}
	return state
}
